package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creditedge/backend/internal/cache"
	accountdomain "github.com/creditedge/backend/internal/domain/account"
	"github.com/creditedge/backend/internal/http/middleware"
)

type AccountService interface {
	Disburse(ctx context.Context, tenantID string, in accountdomain.DisburseInput) (*accountdomain.Account, []accountdomain.Installment, error)
	Get(ctx context.Context, tenantID, id string) (*accountdomain.Account, error)
	List(ctx context.Context, f accountdomain.ListFilter) ([]accountdomain.Account, error)
	ListInstallments(ctx context.Context, tenantID, accountID string) ([]accountdomain.Installment, error)
	GenerateSchedule(ctx context.Context, tenantID, accountID string) ([]accountdomain.Installment, error)
	ApplyPayment(ctx context.Context, tenantID string, in accountdomain.PaymentInput) (*accountdomain.Account, *accountdomain.PaymentResult, error)
	Statistics(ctx context.Context, tenantID string) (*accountdomain.Statistics, error)
}

type AccountHandler struct {
	accounts    AccountService
	idempotency *cache.Idempotency
	statsCache  cache.Store
	statsTTL    time.Duration
}

func NewAccountHandler(accounts AccountService, idempotency *cache.Idempotency, statsCache cache.Store, statsTTL time.Duration) *AccountHandler {
	return &AccountHandler{accounts: accounts, idempotency: idempotency, statsCache: statsCache, statsTTL: statsTTL}
}

type disburseRequest struct {
	ApplicationID    string `json:"application_id" binding:"required"`
	DisbursementDate string `json:"disbursement_date"`
}

func (h *AccountHandler) Disburse(c *gin.Context) {
	var req disburseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	disbursedAt := time.Now().UTC()
	if strings.TrimSpace(req.DisbursementDate) != "" {
		parsed, err := time.Parse(time.RFC3339, req.DisbursementDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_disbursement_date")
			return
		}
		disbursedAt = parsed.UTC()
	}

	acct, installments, err := h.accounts.Disburse(c.Request.Context(), middleware.TenantID(c), accountdomain.DisburseInput{
		ApplicationID:    req.ApplicationID,
		DisbursementDate: disbursedAt,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"account": acct, "schedule": installments})
}

func (h *AccountHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("accountId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_account_id")
		return
	}
	item, err := h.accounts.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

func (h *AccountHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.accounts.List(c.Request.Context(), accountdomain.ListFilter{
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

func (h *AccountHandler) ListPayments(c *gin.Context) {
	id := strings.TrimSpace(c.Param("accountId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_account_id")
		return
	}
	installments, err := h.accounts.ListInstallments(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"items": installments})
}

func (h *AccountHandler) GenerateSchedule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("accountId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing_account_id")
		return
	}
	installments, err := h.accounts.GenerateSchedule(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"items": installments})
}

type processPaymentRequest struct {
	PaidAmountMinor int64  `json:"paid_amount_minor" binding:"required"`
	PaidDate        string `json:"paid_date"`
}

// ProcessPayment applies money to an installment's account. A repeated
// request carrying the same Idempotency-Key replays the first outcome
// instead of applying the payment twice.
func (h *AccountHandler) ProcessPayment(c *gin.Context) {
	installmentID := strings.TrimSpace(c.Param("paymentId"))
	if installmentID == "" {
		respondError(c, http.StatusBadRequest, "missing_payment_id")
		return
	}
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}

	var paidDate time.Time
	if strings.TrimSpace(req.PaidDate) != "" {
		parsed, err := time.Parse(time.RFC3339, req.PaidDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_paid_date")
			return
		}
		paidDate = parsed.UTC()
	}

	tenantID := middleware.TenantID(c)
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idemKey != "" && h.idempotency != nil {
		if stored, ok, err := h.idempotency.Lookup(c.Request.Context(), tenantID, idemKey); err == nil && ok {
			c.Data(stored.Status, "application/json", stored.Body)
			return
		}
	}

	acct, res, err := h.accounts.ApplyPayment(c.Request.Context(), tenantID, accountdomain.PaymentInput{
		InstallmentID:   installmentID,
		PaidAmountMinor: req.PaidAmountMinor,
		PaidDate:        paidDate,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	body, _ := json.Marshal(gin.H{"success": true, "data": gin.H{"account": acct, "result": res}})
	if idemKey != "" && h.idempotency != nil {
		_ = h.idempotency.Remember(c.Request.Context(), tenantID, idemKey, http.StatusOK, body)
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (h *AccountHandler) Statistics(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	cacheKey := "stats:" + tenantID

	if h.statsCache != nil && h.statsTTL > 0 {
		if raw, ok, err := h.statsCache.Get(c.Request.Context(), cacheKey); err == nil && ok {
			var stats accountdomain.Statistics
			if json.Unmarshal(raw, &stats) == nil {
				respondData(c, http.StatusOK, &stats)
				return
			}
		}
	}

	stats, err := h.accounts.Statistics(c.Request.Context(), tenantID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if h.statsCache != nil && h.statsTTL > 0 {
		if raw, err := json.Marshal(stats); err == nil {
			_ = h.statsCache.Set(c.Request.Context(), cacheKey, raw, h.statsTTL)
		}
	}
	respondData(c, http.StatusOK, stats)
}
