package unit

import (
	"bytes"
	"context"
	"testing"

	clientdomain "github.com/creditedge/backend/internal/domain/client"
	"github.com/creditedge/backend/internal/domain/fault"
)

type fakeClientRepo struct {
	items    map[string]*clientdomain.Entity
	statuses map[string]string
	nextID   int
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{items: map[string]*clientdomain.Entity{}, statuses: map[string]string{}}
}

func (r *fakeClientRepo) Create(_ context.Context, e *clientdomain.Entity) (*clientdomain.Entity, error) {
	r.nextID++
	cp := *e
	cp.ID = "client-" + string(rune('0'+r.nextID))
	r.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, tenantID, id string) (*clientdomain.Entity, error) {
	e, ok := r.items[id]
	if !ok || e.TenantID != tenantID {
		return nil, fault.Conflict("not_found")
	}
	cp := *e
	return &cp, nil
}

func (r *fakeClientRepo) GetByIDHash(_ context.Context, tenantID string, idHash []byte) (*clientdomain.Entity, error) {
	for _, e := range r.items {
		if e.TenantID == tenantID && bytes.Equal(e.IDHash, idHash) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, fault.Conflict("not_found")
}

func (r *fakeClientRepo) List(_ context.Context, f clientdomain.ListFilter) ([]clientdomain.Entity, error) {
	var out []clientdomain.Entity
	for _, e := range r.items {
		if e.TenantID == f.TenantID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) Update(_ context.Context, e *clientdomain.Entity) error {
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeClientRepo) SetStatus(_ context.Context, _, id, status string) error {
	r.statuses[id] = status
	if e, ok := r.items[id]; ok {
		e.Status = status
	}
	return nil
}

func TestClientRegisterHashesNationalID(t *testing.T) {
	repo := newFakeClientRepo()
	svc := clientdomain.NewService(repo)
	ctx := context.Background()

	cl, err := svc.Register(ctx, clientdomain.CreateInput{
		TenantID:  "tenant-1",
		FirstName: "Bupe",
		LastName:  "Mwansa",
		IDNumber:  "123456/78/1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(repo.items[cl.ID].IDHash) == 0 {
		t.Fatalf("national id hash not stored")
	}
	if repo.items[cl.ID].Status != clientdomain.StatusActive {
		t.Fatalf("expected active status")
	}

	// Same number hashes identically, so re-registration conflicts.
	if _, err := svc.Register(ctx, clientdomain.CreateInput{
		TenantID:  "tenant-1",
		FirstName: "Bupe",
		LastName:  "Mwansa",
		IDNumber:  "123456/78/1",
	}); !fault.IsConflict(err) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}

	// A different tenant salts the hash, so the same number registers cleanly.
	if _, err := svc.Register(ctx, clientdomain.CreateInput{
		TenantID:  "tenant-2",
		FirstName: "Bupe",
		LastName:  "Mwansa",
		IDNumber:  "123456/78/1",
	}); err != nil {
		t.Fatalf("cross-tenant register: %v", err)
	}
}

func TestClientRegisterValidates(t *testing.T) {
	svc := clientdomain.NewService(newFakeClientRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, clientdomain.CreateInput{TenantID: "tenant-1", FirstName: " ", LastName: "Mwansa", IDNumber: "1"}); !fault.IsValidation(err) {
		t.Fatalf("expected name validation, got %v", err)
	}
	if _, err := svc.Register(ctx, clientdomain.CreateInput{TenantID: "tenant-1", FirstName: "Bupe", LastName: "Mwansa"}); !fault.IsValidation(err) {
		t.Fatalf("expected id_number validation, got %v", err)
	}
}

func TestClientBlacklistAndReinstate(t *testing.T) {
	repo := newFakeClientRepo()
	svc := clientdomain.NewService(repo)
	ctx := context.Background()

	cl, err := svc.Register(ctx, clientdomain.CreateInput{TenantID: "tenant-1", FirstName: "Bupe", LastName: "Mwansa", IDNumber: "1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Blacklist(ctx, "tenant-1", cl.ID); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if repo.statuses[cl.ID] != clientdomain.StatusBlacklisted {
		t.Fatalf("expected blacklisted, got %s", repo.statuses[cl.ID])
	}

	if err := svc.Reinstate(ctx, "tenant-1", cl.ID); err != nil {
		t.Fatalf("reinstate: %v", err)
	}
	if repo.statuses[cl.ID] != clientdomain.StatusActive {
		t.Fatalf("expected active, got %s", repo.statuses[cl.ID])
	}
}

func TestClientUpdateRejectsUnknownStatus(t *testing.T) {
	repo := newFakeClientRepo()
	svc := clientdomain.NewService(repo)
	ctx := context.Background()

	cl, err := svc.Register(ctx, clientdomain.CreateInput{TenantID: "tenant-1", FirstName: "Bupe", LastName: "Mwansa", IDNumber: "1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	bad := "frozen"
	if _, err := svc.Update(ctx, "tenant-1", cl.ID, clientdomain.UpdateInput{Status: &bad}); !fault.IsValidation(err) {
		t.Fatalf("expected status validation, got %v", err)
	}

	score := int32(700)
	updated, err := svc.Update(ctx, "tenant-1", cl.ID, clientdomain.UpdateInput{CreditScore: &score})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CreditScore != 700 {
		t.Fatalf("credit score not updated")
	}
}
