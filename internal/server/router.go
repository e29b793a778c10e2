package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creditedge/backend/internal/auth"
	"github.com/creditedge/backend/internal/config"
	"github.com/creditedge/backend/internal/http/handlers"
	"github.com/creditedge/backend/internal/http/middleware"
	"github.com/creditedge/backend/internal/version"
	"github.com/creditedge/backend/internal/ws"
)

type Dependencies struct {
	Pinger             handlers.Pinger
	AuthHandler        *handlers.AuthHandler
	ClientHandler      *handlers.ClientHandler
	ProductHandler     *handlers.ProductHandler
	ApplicationHandler *handlers.ApplicationHandler
	AccountHandler     *handlers.AccountHandler
	WSHandler          *ws.Handler
	JWTManager         *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestBodyLimit(cfg.MaxBodyBytes))
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.AuthHandler != nil && deps.JWTManager != nil {
		authGroup := r.Group("/v1/auth")
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/refresh", deps.AuthHandler.Refresh)
		authGroup.POST("/logout", deps.AuthHandler.Logout)

		protected := authGroup.Group("")
		protected.Use(middleware.RequireAuth(deps.JWTManager))
		protected.GET("/me", deps.AuthHandler.Me)

		staff := middleware.RequireRole(auth.RolePlatformAdmin, auth.RoleTenantAdmin, auth.RoleLoanOfficer)
		admins := middleware.RequireRole(auth.RolePlatformAdmin, auth.RoleTenantAdmin)

		if deps.ClientHandler != nil {
			clientGroup := r.Group("/v1/clients")
			clientGroup.Use(middleware.RequireAuth(deps.JWTManager), staff)
			clientGroup.POST("", deps.ClientHandler.Register)
			clientGroup.GET("", deps.ClientHandler.List)
			clientGroup.GET("/:clientId", deps.ClientHandler.Get)
			clientGroup.PATCH("/:clientId", deps.ClientHandler.Update)
			clientGroup.POST("/:clientId/blacklist", admins, deps.ClientHandler.Blacklist)
			clientGroup.POST("/:clientId/reinstate", admins, deps.ClientHandler.Reinstate)
		}

		if deps.ProductHandler != nil {
			productGroup := r.Group("/v1/loans/products")
			productGroup.Use(middleware.RequireAuth(deps.JWTManager), staff)
			productGroup.GET("", deps.ProductHandler.List)
			productGroup.GET("/:productId", deps.ProductHandler.Get)
			productGroup.POST("", admins, deps.ProductHandler.Create)
			productGroup.PATCH("/:productId", admins, deps.ProductHandler.Update)
			productGroup.DELETE("/:productId", admins, deps.ProductHandler.Delete)
		}

		if deps.ApplicationHandler != nil {
			appGroup := r.Group("/v1/loans/applications")
			appGroup.Use(middleware.RequireAuth(deps.JWTManager), staff)
			appGroup.POST("", deps.ApplicationHandler.Create)
			appGroup.GET("", deps.ApplicationHandler.List)
			appGroup.GET("/:applicationId", deps.ApplicationHandler.Get)
			appGroup.POST("/:applicationId/submit", deps.ApplicationHandler.Submit)
			appGroup.POST("/:applicationId/review", deps.ApplicationHandler.StartReview)
			appGroup.POST("/:applicationId/approve", admins, deps.ApplicationHandler.Approve)
			appGroup.POST("/:applicationId/reject", admins, deps.ApplicationHandler.Reject)
			appGroup.POST("/:applicationId/cancel", deps.ApplicationHandler.Cancel)
		}

		if deps.AccountHandler != nil {
			loanGroup := r.Group("/v1/loans")
			loanGroup.Use(middleware.RequireAuth(deps.JWTManager), staff)
			loanGroup.POST("/accounts/disburse", admins, deps.AccountHandler.Disburse)
			loanGroup.GET("/accounts", deps.AccountHandler.List)
			loanGroup.GET("/accounts/:accountId", deps.AccountHandler.Get)
			loanGroup.GET("/accounts/:accountId/payments", deps.AccountHandler.ListPayments)
			loanGroup.POST("/accounts/:accountId/generate-schedule", deps.AccountHandler.GenerateSchedule)
			loanGroup.POST("/payments/:paymentId/process", deps.AccountHandler.ProcessPayment)
			loanGroup.GET("/statistics", deps.AccountHandler.Statistics)
		}

		if deps.WSHandler != nil {
			r.GET("/v1/ws", middleware.RequireAuth(deps.JWTManager), deps.WSHandler.HandleWebSocket)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not_found"})
	})

	return r
}
