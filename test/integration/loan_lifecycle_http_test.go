package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creditedge/backend/internal/auth"
	"github.com/creditedge/backend/internal/cache"
	"github.com/creditedge/backend/internal/config"
	accountdomain "github.com/creditedge/backend/internal/domain/account"
	"github.com/creditedge/backend/internal/http/handlers"
	"github.com/creditedge/backend/internal/server"
)

type fakeAccountService struct {
	applied int
}

func (s *fakeAccountService) Disburse(_ context.Context, tenantID string, in accountdomain.DisburseInput) (*accountdomain.Account, []accountdomain.Installment, error) {
	acct := &accountdomain.Account{ID: "acct-1", TenantID: tenantID, ApplicationID: in.ApplicationID, Status: accountdomain.StatusActive}
	return acct, []accountdomain.Installment{{ID: "ins-1", AccountID: "acct-1", Number: 1}}, nil
}

func (s *fakeAccountService) Get(_ context.Context, tenantID, id string) (*accountdomain.Account, error) {
	return &accountdomain.Account{ID: id, TenantID: tenantID, Status: accountdomain.StatusActive}, nil
}

func (s *fakeAccountService) List(_ context.Context, f accountdomain.ListFilter) ([]accountdomain.Account, error) {
	return []accountdomain.Account{{ID: "acct-1", TenantID: f.TenantID}}, nil
}

func (s *fakeAccountService) ListInstallments(_ context.Context, _, accountID string) ([]accountdomain.Installment, error) {
	return []accountdomain.Installment{{ID: "ins-1", AccountID: accountID, Number: 1}}, nil
}

func (s *fakeAccountService) GenerateSchedule(_ context.Context, _, accountID string) ([]accountdomain.Installment, error) {
	return []accountdomain.Installment{{ID: "ins-1", AccountID: accountID, Number: 1}}, nil
}

func (s *fakeAccountService) ApplyPayment(_ context.Context, tenantID string, in accountdomain.PaymentInput) (*accountdomain.Account, *accountdomain.PaymentResult, error) {
	s.applied++
	acct := &accountdomain.Account{ID: "acct-1", TenantID: tenantID, TotalPaidMinor: in.PaidAmountMinor}
	return acct, &accountdomain.PaymentResult{AppliedMinor: in.PaidAmountMinor}, nil
}

func (s *fakeAccountService) Statistics(_ context.Context, tenantID string) (*accountdomain.Statistics, error) {
	return &accountdomain.Statistics{TenantID: tenantID, ActiveLoans: 1}, nil
}

func newLifecycleRouter(t *testing.T, accounts *fakeAccountService) (*gin.Engine, *http.Cookie) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newFakeAuthRepo()
	repo.addUser("admin@acme.test", "pass-word-1", auth.RoleTenantAdmin)

	jwtManager := auth.NewJWTManager("issuer", "aud", "super-secret")
	authSvc := auth.NewService(repo, jwtManager, 15*time.Minute, 24*time.Hour)
	authHandler := handlers.NewAuthHandler(authSvc, auth.CookieConfig{}, 15*time.Minute, 24*time.Hour)

	store := cache.NewMemoryStore()
	accountHandler := handlers.NewAccountHandler(accounts, cache.NewIdempotency(store, time.Hour), store, 30*time.Second)

	r := server.NewRouter(config.Config{Env: "test"}, slog.Default(), server.Dependencies{
		AuthHandler:    authHandler,
		AccountHandler: accountHandler,
		JWTManager:     jwtManager,
	})

	loginReq := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString(`{"email":"admin@acme.test","password":"pass-word-1"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	r.ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("expected login 200, got %d: %s", loginW.Code, loginW.Body.String())
	}

	var accessCookie *http.Cookie
	for _, c := range loginW.Result().Cookies() {
		if c.Name == auth.AccessCookieName {
			accessCookie = c
			break
		}
	}
	if accessCookie == nil {
		t.Fatalf("missing access cookie")
	}
	return r, accessCookie
}

func TestLoanAccountRoutes(t *testing.T) {
	accounts := &fakeAccountService{}
	r, accessCookie := newLifecycleRouter(t, accounts)

	t.Run("disburse", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{"application_id": "app-1", "disbursement_date": "2025-03-01T00:00:00Z"})
		req := httptest.NewRequest(http.MethodPost, "/v1/loans/accounts/disburse", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(accessCookie)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
		}
	})

	t.Run("list accounts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/loans/accounts", nil)
		req.AddCookie(accessCookie)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	})

	t.Run("get account", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/loans/accounts/acct-1", nil)
		req.AddCookie(accessCookie)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	})

	t.Run("list scheduled payments", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/loans/accounts/acct-1/payments", nil)
		req.AddCookie(accessCookie)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	})

	t.Run("statistics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/loans/statistics", nil)
		req.AddCookie(accessCookie)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/loans/accounts", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", resp.Code)
		}
	})
}

func TestProcessPaymentIdempotencyReplay(t *testing.T) {
	accounts := &fakeAccountService{}
	r, accessCookie := newLifecycleRouter(t, accounts)

	send := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]any{"paid_amount_minor": 5000, "paid_date": "2025-04-01T00:00:00Z"})
		req := httptest.NewRequest(http.MethodPost, "/v1/loans/payments/ins-1/process", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "pay-key-1")
		req.AddCookie(accessCookie)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	first := send()
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", first.Code, first.Body.String())
	}
	second := send()
	if second.Code != http.StatusOK {
		t.Fatalf("expected replay 200 got %d", second.Code)
	}
	if accounts.applied != 1 {
		t.Fatalf("expected a single applied payment, got %d", accounts.applied)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs from original")
	}
}
