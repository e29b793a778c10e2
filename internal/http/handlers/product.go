package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	productdomain "github.com/creditedge/backend/internal/domain/product"
	"github.com/creditedge/backend/internal/http/middleware"
)

type ProductService interface {
	Create(ctx context.Context, in productdomain.CreateInput) (*productdomain.Entity, error)
	Get(ctx context.Context, tenantID, id string) (*productdomain.Entity, error)
	List(ctx context.Context, f productdomain.ListFilter) ([]productdomain.Entity, error)
	Update(ctx context.Context, tenantID, id string, in productdomain.UpdateInput) (*productdomain.Entity, error)
	Delete(ctx context.Context, tenantID, id string) (bool, error)
}

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	MinAmountMinor     int64  `json:"min_amount_minor" binding:"required"`
	MaxAmountMinor     int64  `json:"max_amount_minor" binding:"required"`
	MinTerm            int32  `json:"min_term" binding:"required"`
	MaxTerm            int32  `json:"max_term" binding:"required"`
	InterestRateBPS    int32  `json:"interest_rate_bps"`
	InterestMethod     string `json:"interest_method" binding:"required"`
	RepaymentFrequency string `json:"repayment_frequency" binding:"required"`
	GracePeriodDays    int32  `json:"grace_period_days"`
	FeeFlatMinor       int64  `json:"fee_flat_minor"`
	FeeRateBPS         int32  `json:"fee_rate_bps"`
	RequiresCollateral bool   `json:"requires_collateral"`
	Status             string `json:"status"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	created, err := h.products.Create(c.Request.Context(), productdomain.CreateInput{
		TenantID:           middleware.TenantID(c),
		Name:               req.Name,
		Description:        req.Description,
		MinAmountMinor:     req.MinAmountMinor,
		MaxAmountMinor:     req.MaxAmountMinor,
		MinTerm:            req.MinTerm,
		MaxTerm:            req.MaxTerm,
		InterestRateBPS:    req.InterestRateBPS,
		InterestMethod:     req.InterestMethod,
		RepaymentFrequency: req.RepaymentFrequency,
		GracePeriodDays:    req.GracePeriodDays,
		FeeFlatMinor:       req.FeeFlatMinor,
		FeeRateBPS:         req.FeeRateBPS,
		RequiresCollateral: req.RequiresCollateral,
		Status:             req.Status,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("productId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_product_id")
		return
	}
	item, err := h.products.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.products.List(c.Request.Context(), productdomain.ListFilter{
		TenantID: middleware.TenantID(c),
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

type updateProductRequest struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	MinAmountMinor     *int64  `json:"min_amount_minor"`
	MaxAmountMinor     *int64  `json:"max_amount_minor"`
	MinTerm            *int32  `json:"min_term"`
	MaxTerm            *int32  `json:"max_term"`
	InterestRateBPS    *int32  `json:"interest_rate_bps"`
	InterestMethod     *string `json:"interest_method"`
	RepaymentFrequency *string `json:"repayment_frequency"`
	GracePeriodDays    *int32  `json:"grace_period_days"`
	FeeFlatMinor       *int64  `json:"fee_flat_minor"`
	FeeRateBPS         *int32  `json:"fee_rate_bps"`
	RequiresCollateral *bool   `json:"requires_collateral"`
	Status             *string `json:"status"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("productId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_product_id")
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	updated, err := h.products.Update(c.Request.Context(), middleware.TenantID(c), id, productdomain.UpdateInput{
		Name:               req.Name,
		Description:        req.Description,
		MinAmountMinor:     req.MinAmountMinor,
		MaxAmountMinor:     req.MaxAmountMinor,
		MinTerm:            req.MinTerm,
		MaxTerm:            req.MaxTerm,
		InterestRateBPS:    req.InterestRateBPS,
		InterestMethod:     req.InterestMethod,
		RepaymentFrequency: req.RepaymentFrequency,
		GracePeriodDays:    req.GracePeriodDays,
		FeeFlatMinor:       req.FeeFlatMinor,
		FeeRateBPS:         req.FeeRateBPS,
		RequiresCollateral: req.RequiresCollateral,
		Status:             req.Status,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("productId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_product_id")
		return
	}
	archived, err := h.products.Delete(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if archived {
		respondMessage(c, http.StatusOK, "product archived", nil)
		return
	}
	respondMessage(c, http.StatusOK, "product deleted", nil)
}
