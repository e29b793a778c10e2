package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	clientdomain "github.com/creditedge/backend/internal/domain/client"
	"github.com/creditedge/backend/internal/http/middleware"
)

type ClientService interface {
	Register(ctx context.Context, in clientdomain.CreateInput) (*clientdomain.Entity, error)
	Get(ctx context.Context, tenantID, id string) (*clientdomain.Entity, error)
	List(ctx context.Context, f clientdomain.ListFilter) ([]clientdomain.Entity, error)
	Update(ctx context.Context, tenantID, id string, in clientdomain.UpdateInput) (*clientdomain.Entity, error)
	Blacklist(ctx context.Context, tenantID, id string) error
	Reinstate(ctx context.Context, tenantID, id string) error
}

type ClientHandler struct {
	clients ClientService
}

func NewClientHandler(clients ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type registerClientRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	IDNumber    string `json:"id_number" binding:"required"`
	CreditScore int32  `json:"credit_score"`
}

func (h *ClientHandler) Register(c *gin.Context) {
	var req registerClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	created, err := h.clients.Register(c.Request.Context(), clientdomain.CreateInput{
		TenantID:    middleware.TenantID(c),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		IDNumber:    req.IDNumber,
		CreditScore: req.CreditScore,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (h *ClientHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("clientId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_client_id")
		return
	}
	item, err := h.clients.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

func (h *ClientHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.clients.List(c.Request.Context(), clientdomain.ListFilter{
		TenantID: middleware.TenantID(c),
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"items": items})
}

type updateClientRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	CreditScore *int32  `json:"credit_score"`
	Status      *string `json:"status"`
}

func (h *ClientHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("clientId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_client_id")
		return
	}
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	updated, err := h.clients.Update(c.Request.Context(), middleware.TenantID(c), id, clientdomain.UpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		CreditScore: req.CreditScore,
		Status:      req.Status,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *ClientHandler) Blacklist(c *gin.Context) {
	id := strings.TrimSpace(c.Param("clientId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_client_id")
		return
	}
	if err := h.clients.Blacklist(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respondDomainError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "client blacklisted", nil)
}

func (h *ClientHandler) Reinstate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("clientId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_client_id")
		return
	}
	if err := h.clients.Reinstate(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respondDomainError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "client reinstated", nil)
}
