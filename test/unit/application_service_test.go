package unit

import (
	"context"
	"testing"

	applicationdomain "github.com/creditedge/backend/internal/domain/application"
	clientdomain "github.com/creditedge/backend/internal/domain/client"
	"github.com/creditedge/backend/internal/domain/fault"
	productdomain "github.com/creditedge/backend/internal/domain/product"
)

type fakeApplicationRepo struct {
	items  map[string]*applicationdomain.Entity
	nextID int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: map[string]*applicationdomain.Entity{}}
}

func (r *fakeApplicationRepo) Create(_ context.Context, e *applicationdomain.Entity) (*applicationdomain.Entity, error) {
	r.nextID++
	cp := *e
	cp.ID = "app-" + string(rune('0'+r.nextID))
	r.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, tenantID, id string) (*applicationdomain.Entity, error) {
	e, ok := r.items[id]
	if !ok || e.TenantID != tenantID {
		return nil, fault.Conflict("not_found")
	}
	cp := *e
	return &cp, nil
}

func (r *fakeApplicationRepo) List(_ context.Context, f applicationdomain.ListFilter) ([]applicationdomain.Entity, error) {
	var out []applicationdomain.Entity
	for _, e := range r.items {
		if e.TenantID == f.TenantID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, e *applicationdomain.Entity) error {
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) CountByTenant(_ context.Context, _ string) (int64, error) {
	return int64(len(r.items)), nil
}

type fakeClientGateway struct {
	client *clientdomain.Entity
}

func (g *fakeClientGateway) GetByID(_ context.Context, _, _ string) (*clientdomain.Entity, error) {
	if g.client == nil {
		return nil, fault.Conflict("not_found")
	}
	return g.client, nil
}

type fakeProductGateway struct {
	product *productdomain.Entity
}

func (g *fakeProductGateway) GetByID(_ context.Context, _, _ string) (*productdomain.Entity, error) {
	if g.product == nil {
		return nil, fault.Conflict("not_found")
	}
	return g.product, nil
}

func activeProduct() *productdomain.Entity {
	return &productdomain.Entity{
		ID:                 "prod-1",
		TenantID:           "tenant-1",
		Name:               "Working Capital",
		MinAmountMinor:     100000,
		MaxAmountMinor:     10000000,
		MinTerm:            3,
		MaxTerm:            24,
		InterestRateBPS:    1800,
		InterestMethod:     productdomain.MethodFlat,
		RepaymentFrequency: productdomain.FrequencyMonthly,
		Status:             productdomain.StatusActive,
	}
}

func newApplicationFixture() (*applicationdomain.Service, *fakeApplicationRepo, *fakeClientGateway, *fakeProductGateway) {
	repo := newFakeApplicationRepo()
	clients := &fakeClientGateway{client: &clientdomain.Entity{ID: "client-1", TenantID: "tenant-1", Status: clientdomain.StatusActive}}
	products := &fakeProductGateway{product: activeProduct()}
	return applicationdomain.NewService(repo, clients, products), repo, clients, products
}

func createDraft(t *testing.T, svc *applicationdomain.Service) *applicationdomain.Entity {
	t.Helper()
	app, err := svc.Create(context.Background(), applicationdomain.CreateInput{
		TenantID:             "tenant-1",
		ClientID:             "client-1",
		ProductID:            "prod-1",
		RequestedAmountMinor: 1200000,
		RequestedTerm:        12,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if app.Status != applicationdomain.StatusDraft {
		t.Fatalf("expected draft, got %s", app.Status)
	}
	return app
}

func TestApplicationHappyPathToDisbursed(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	ctx := context.Background()
	app := createDraft(t, svc)

	if _, err := svc.Submit(ctx, "tenant-1", app.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.StartReview(ctx, "tenant-1", app.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	approved, err := svc.Approve(ctx, "tenant-1", app.ID, applicationdomain.ApproveInput{
		ApprovedAmountMinor: 1000000,
		ApprovedTerm:        10,
		ApprovedRateBPS:     1500,
		ApproverID:          "admin-1",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovedAmountMinor != 1000000 || approved.ApprovedAt == nil {
		t.Fatalf("approval fields not recorded: %+v", approved)
	}

	disbursed, err := svc.MarkDisbursed(ctx, "tenant-1", app.ID, "acct-1")
	if err != nil {
		t.Fatalf("mark disbursed: %v", err)
	}
	if disbursed.Status != applicationdomain.StatusDisbursed || disbursed.AccountID != "acct-1" {
		t.Fatalf("unexpected final state: %+v", disbursed)
	}
}

func TestApplicationSubmitRejectsBlacklistedClient(t *testing.T) {
	svc, _, clients, _ := newApplicationFixture()
	app := createDraft(t, svc)

	clients.client.Status = clientdomain.StatusBlacklisted
	if _, err := svc.Submit(context.Background(), "tenant-1", app.ID); !fault.IsConflict(err) {
		t.Fatalf("expected conflict for blacklisted client, got %v", err)
	}
}

func TestApplicationSubmitEnforcesProductLimits(t *testing.T) {
	svc, _, _, products := newApplicationFixture()
	app := createDraft(t, svc)

	products.product.MaxAmountMinor = 500000
	if _, err := svc.Submit(context.Background(), "tenant-1", app.ID); !fault.IsValidation(err) {
		t.Fatalf("expected validation error for amount over product max, got %v", err)
	}
}

func TestApplicationSubmitRequiresActiveProduct(t *testing.T) {
	svc, _, _, products := newApplicationFixture()
	app := createDraft(t, svc)

	products.product.Status = productdomain.StatusSuspended
	if _, err := svc.Submit(context.Background(), "tenant-1", app.ID); !fault.IsConflict(err) {
		t.Fatalf("expected conflict for inactive product, got %v", err)
	}
}

func TestApplicationApproveRequiresReviewableState(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	app := createDraft(t, svc)

	_, err := svc.Approve(context.Background(), "tenant-1", app.ID, applicationdomain.ApproveInput{
		ApprovedAmountMinor: 1000000,
		ApprovedTerm:        10,
		ApprovedRateBPS:     1500,
		ApproverID:          "admin-1",
	})
	if !fault.IsConflict(err) {
		t.Fatalf("expected conflict approving a draft, got %v", err)
	}
}

func TestApplicationRejectRequiresReason(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	ctx := context.Background()
	app := createDraft(t, svc)
	if _, err := svc.Submit(ctx, "tenant-1", app.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Reject(ctx, "tenant-1", app.ID, "  "); !fault.IsValidation(err) {
		t.Fatalf("expected validation error for empty reason, got %v", err)
	}
	rejected, err := svc.Reject(ctx, "tenant-1", app.ID, "insufficient income")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != applicationdomain.StatusRejected || rejected.RejectionReason != "insufficient income" {
		t.Fatalf("unexpected rejection state: %+v", rejected)
	}
}

func TestApplicationTerminalStatesBlockTransitions(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	ctx := context.Background()
	app := createDraft(t, svc)
	if _, err := svc.Submit(ctx, "tenant-1", app.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Reject(ctx, "tenant-1", app.ID, "no"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := svc.Submit(ctx, "tenant-1", app.ID); !fault.IsConflict(err) {
		t.Fatalf("expected conflict submitting rejected application, got %v", err)
	}
	if _, err := svc.Cancel(ctx, "tenant-1", app.ID); !fault.IsConflict(err) {
		t.Fatalf("expected conflict canceling rejected application, got %v", err)
	}
}

func TestApplicationCancelBlockedAfterApproval(t *testing.T) {
	svc, _, _, _ := newApplicationFixture()
	ctx := context.Background()
	app := createDraft(t, svc)
	if _, err := svc.Submit(ctx, "tenant-1", app.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Approve(ctx, "tenant-1", app.ID, applicationdomain.ApproveInput{
		ApprovedAmountMinor: 1200000,
		ApprovedTerm:        12,
		ApprovedRateBPS:     1800,
		ApproverID:          "admin-1",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := svc.Cancel(ctx, "tenant-1", app.ID); !fault.IsConflict(err) {
		t.Fatalf("expected conflict canceling approved application, got %v", err)
	}
}
