package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creditedge/backend/internal/auth"
	"github.com/creditedge/backend/internal/cache"
	"github.com/creditedge/backend/internal/config"
	"github.com/creditedge/backend/internal/db"
	accountdomain "github.com/creditedge/backend/internal/domain/account"
	applicationdomain "github.com/creditedge/backend/internal/domain/application"
	clientdomain "github.com/creditedge/backend/internal/domain/client"
	productdomain "github.com/creditedge/backend/internal/domain/product"
	"github.com/creditedge/backend/internal/http/handlers"
	"github.com/creditedge/backend/internal/observability"
	postgresrepo "github.com/creditedge/backend/internal/repository/postgres"
	"github.com/creditedge/backend/internal/server"
	"github.com/creditedge/backend/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	policy, err := accountdomain.ParseOverpaymentPolicy(cfg.OverpaymentPolicy)
	if err != nil {
		logger.Error("invalid overpayment policy", "err", err)
		os.Exit(1)
	}

	var store cache.Store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, falling back to in-memory cache", "err", err)
		store = cache.NewMemoryStore()
	} else {
		store = cache.NewRedisStore(redisClient)
	}

	authRepo := db.NewAuthRepository(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(authRepo, jwtManager, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authHandler := handlers.NewAuthHandler(authService, auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	clientRepo := postgresrepo.NewClientRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	applicationRepo := postgresrepo.NewApplicationRepository(pool)
	accountRepo := postgresrepo.NewAccountRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)

	clientService := clientdomain.NewService(clientRepo)
	productService := productdomain.NewService(productRepo)
	applicationService := applicationdomain.NewService(applicationRepo, clientRepo, productRepo)
	accountService := accountdomain.NewService(accountRepo, applicationService, productRepo, outboxRepo, policy, cfg.OverdueLateFeeBPS, cfg.CurrencyCode)

	idempotency := cache.NewIdempotency(store, cfg.IdempotencyTTL)

	hub := ws.NewHub()
	notifier := ws.NewNotifier(postgresrepo.NewWSRepository(pool), hub, cfg.WSPollInterval)
	notifierCtx, notifierCancel := context.WithCancel(context.Background())
	defer notifierCancel()
	go func() {
		if err := notifier.Run(notifierCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ws notifier stopped", "err", err)
		}
	}()

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:             pool,
		AuthHandler:        authHandler,
		ClientHandler:      handlers.NewClientHandler(clientService),
		ProductHandler:     handlers.NewProductHandler(productService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService),
		AccountHandler:     handlers.NewAccountHandler(accountService, idempotency, store, cfg.StatsCacheTTL),
		WSHandler:          ws.NewHandler(hub),
		JWTManager:         jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
