package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	applicationdomain "github.com/creditedge/backend/internal/domain/application"
	"github.com/creditedge/backend/internal/http/middleware"
)

type ApplicationService interface {
	Create(ctx context.Context, in applicationdomain.CreateInput) (*applicationdomain.Entity, error)
	Get(ctx context.Context, tenantID, id string) (*applicationdomain.Entity, error)
	List(ctx context.Context, f applicationdomain.ListFilter) ([]applicationdomain.Entity, error)
	Submit(ctx context.Context, tenantID, id string) (*applicationdomain.Entity, error)
	StartReview(ctx context.Context, tenantID, id string) (*applicationdomain.Entity, error)
	Approve(ctx context.Context, tenantID, id string, in applicationdomain.ApproveInput) (*applicationdomain.Entity, error)
	Reject(ctx context.Context, tenantID, id, reason string) (*applicationdomain.Entity, error)
	Cancel(ctx context.Context, tenantID, id string) (*applicationdomain.Entity, error)
}

type ApplicationHandler struct {
	applications ApplicationService
}

func NewApplicationHandler(applications ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type createApplicationRequest struct {
	ClientID             string `json:"client_id" binding:"required"`
	ProductID            string `json:"product_id" binding:"required"`
	RequestedAmountMinor int64  `json:"requested_amount_minor" binding:"required"`
	RequestedTerm        int32  `json:"requested_term" binding:"required"`
	Purpose              string `json:"purpose"`
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	created, err := h.applications.Create(c.Request.Context(), applicationdomain.CreateInput{
		TenantID:             middleware.TenantID(c),
		ClientID:             req.ClientID,
		ProductID:            req.ProductID,
		RequestedAmountMinor: req.RequestedAmountMinor,
		RequestedTerm:        req.RequestedTerm,
		Purpose:              req.Purpose,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_application_id")
		return
	}
	item, err := h.applications.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.applications.List(c.Request.Context(), applicationdomain.ListFilter{
		TenantID: middleware.TenantID(c),
		ClientID: strings.TrimSpace(c.Query("client_id")),
		Status:   strings.TrimSpace(c.Query("status")),
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"items": items})
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	h.transition(c, h.applications.Submit)
}

func (h *ApplicationHandler) StartReview(c *gin.Context) {
	h.transition(c, h.applications.StartReview)
}

func (h *ApplicationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.applications.Cancel)
}

func (h *ApplicationHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id string) (*applicationdomain.Entity, error)) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_application_id")
		return
	}
	item, err := fn(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

type approveApplicationRequest struct {
	ApprovedAmountMinor int64 `json:"approved_amount_minor" binding:"required"`
	ApprovedTerm        int32 `json:"approved_term" binding:"required"`
	ApprovedRateBPS     int32 `json:"approved_rate_bps"`
}

func (h *ApplicationHandler) Approve(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_application_id")
		return
	}
	var req approveApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	approverID, _ := c.Get("user_id")
	item, err := h.applications.Approve(c.Request.Context(), middleware.TenantID(c), id, applicationdomain.ApproveInput{
		ApprovedAmountMinor: req.ApprovedAmountMinor,
		ApprovedTerm:        req.ApprovedTerm,
		ApprovedRateBPS:     req.ApprovedRateBPS,
		ApproverID:          approverID.(string),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

type rejectApplicationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *ApplicationHandler) Reject(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_application_id")
		return
	}
	var req rejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	item, err := h.applications.Reject(c.Request.Context(), middleware.TenantID(c), id, req.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}
