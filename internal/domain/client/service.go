package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/creditedge/backend/internal/domain/fault"
	"golang.org/x/crypto/sha3"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// HashNationalID derives the stored identity digest from the tenant and the
// raw national ID number. Only the digest is persisted.
func HashNationalID(tenantID, idNumber string) []byte {
	input := fmt.Sprintf("%s:%s", strings.TrimSpace(tenantID), strings.TrimSpace(idNumber))
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(input))
	return h.Sum(nil)
}

func (s *Service) Register(ctx context.Context, in CreateInput) (*Entity, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return nil, fault.Invalid("name", "first and last name required")
	}
	if strings.TrimSpace(in.IDNumber) == "" {
		return nil, fault.Invalid("id_number", "required")
	}

	idHash := HashNationalID(in.TenantID, in.IDNumber)
	if existing, err := s.repo.GetByIDHash(ctx, in.TenantID, idHash); err == nil && existing != nil {
		return nil, fault.Conflict("client_already_registered")
	}

	return s.repo.Create(ctx, &Entity{
		TenantID:    in.TenantID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		IDHash:      idHash,
		CreditScore: in.CreditScore,
		Status:      StatusActive,
	})
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, tenantID, id string, in UpdateInput) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		e.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		e.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		e.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		e.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.CreditScore != nil {
		e.CreditScore = *in.CreditScore
	}
	if in.Status != nil {
		switch *in.Status {
		case StatusActive, StatusInactive, StatusBlacklisted:
			e.Status = *in.Status
		default:
			return nil, fault.Invalid("status", "unknown status")
		}
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Blacklist(ctx context.Context, tenantID, id string) error {
	return s.repo.SetStatus(ctx, tenantID, id, StatusBlacklisted)
}

func (s *Service) Reinstate(ctx context.Context, tenantID, id string) error {
	return s.repo.SetStatus(ctx, tenantID, id, StatusActive)
}
