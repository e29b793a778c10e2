package application

import (
	"context"
	"strings"
	"time"

	clientdomain "github.com/creditedge/backend/internal/domain/client"
	"github.com/creditedge/backend/internal/domain/fault"
	productdomain "github.com/creditedge/backend/internal/domain/product"
)

type ClientRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*clientdomain.Entity, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*productdomain.Entity, error)
}

type Service struct {
	repo        Repository
	clientRepo  ClientRepository
	productRepo ProductRepository
	now         func() time.Time
}

func NewService(repo Repository, clientRepo ClientRepository, productRepo ProductRepository) *Service {
	return &Service{
		repo:        repo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, fault.Invalid("client_id", "required")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fault.Invalid("product_id", "required")
	}
	if in.RequestedAmountMinor <= 0 {
		return nil, fault.Invalid("requested_amount_minor", "must be positive")
	}
	if in.RequestedTerm <= 0 {
		return nil, fault.Invalid("requested_term", "must be positive")
	}
	return s.repo.Create(ctx, &Entity{
		TenantID:             in.TenantID,
		ClientID:             in.ClientID,
		ProductID:            in.ProductID,
		RequestedAmountMinor: in.RequestedAmountMinor,
		RequestedTerm:        in.RequestedTerm,
		Purpose:              strings.TrimSpace(in.Purpose),
		Status:               StatusDraft,
	})
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

// Submit moves draft -> submitted after checking the request against the
// product's amount/term windows and the client's standing.
func (s *Service) Submit(ctx context.Context, tenantID, id string) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusDraft {
		return nil, fault.Conflict("application_not_draft")
	}

	cl, err := s.clientRepo.GetByID(ctx, tenantID, e.ClientID)
	if err != nil {
		return nil, fault.Invalid("client_id", "unknown client")
	}
	if cl.Status == clientdomain.StatusBlacklisted {
		return nil, fault.Conflict("client_blacklisted")
	}

	p, err := s.productRepo.GetByID(ctx, tenantID, e.ProductID)
	if err != nil {
		return nil, fault.Invalid("product_id", "unknown product")
	}
	if p.Status != productdomain.StatusActive {
		return nil, fault.Conflict("product_not_active")
	}
	if e.RequestedAmountMinor < p.MinAmountMinor || e.RequestedAmountMinor > p.MaxAmountMinor {
		return nil, fault.Invalid("requested_amount_minor", "outside product amount range")
	}
	if e.RequestedTerm < p.MinTerm || e.RequestedTerm > p.MaxTerm {
		return nil, fault.Invalid("requested_term", "outside product term range")
	}

	e.Status = StatusSubmitted
	if err := s.repo.UpdateStatus(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) StartReview(ctx context.Context, tenantID, id string) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusSubmitted {
		return nil, fault.Conflict("application_not_submitted")
	}
	e.Status = StatusUnderReview
	if err := s.repo.UpdateStatus(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Approve records the decided amount/term/rate, which may diverge from the
// request as a business override, together with the approver identity.
func (s *Service) Approve(ctx context.Context, tenantID, id string, in ApproveInput) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if Terminal(e.Status) {
		return nil, fault.Conflict("application_terminal")
	}
	if e.Status != StatusSubmitted && e.Status != StatusUnderReview {
		return nil, fault.Conflict("application_not_reviewable")
	}
	if in.ApprovedAmountMinor <= 0 {
		return nil, fault.Invalid("approved_amount_minor", "must be positive")
	}
	if in.ApprovedTerm <= 0 {
		return nil, fault.Invalid("approved_term", "must be positive")
	}
	if in.ApprovedRateBPS < 0 {
		return nil, fault.Invalid("approved_rate_bps", "must be non-negative")
	}
	if strings.TrimSpace(in.ApproverID) == "" {
		return nil, fault.Invalid("approver_id", "required")
	}

	now := s.now()
	e.Status = StatusApproved
	e.ApprovedAmountMinor = in.ApprovedAmountMinor
	e.ApprovedTerm = in.ApprovedTerm
	e.ApprovedRateBPS = in.ApprovedRateBPS
	e.ApproverID = in.ApproverID
	e.ApprovedAt = &now
	if err := s.repo.UpdateStatus(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Reject(ctx context.Context, tenantID, id, reason string) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if Terminal(e.Status) {
		return nil, fault.Conflict("application_terminal")
	}
	if e.Status != StatusSubmitted && e.Status != StatusUnderReview {
		return nil, fault.Conflict("application_not_reviewable")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fault.Invalid("rejection_reason", "required")
	}
	e.Status = StatusRejected
	e.RejectionReason = strings.TrimSpace(reason)
	if err := s.repo.UpdateStatus(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Cancel(ctx context.Context, tenantID, id string) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if Terminal(e.Status) {
		return nil, fault.Conflict("application_terminal")
	}
	if e.Status == StatusApproved {
		return nil, fault.Conflict("application_already_approved")
	}
	e.Status = StatusCanceled
	if err := s.repo.UpdateStatus(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// MarkDisbursed is invoked by the account service once funds are released
// and the loan account exists. disbursed is terminal.
func (s *Service) MarkDisbursed(ctx context.Context, tenantID, id, accountID string) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusApproved {
		return nil, fault.Conflict("application_not_approved")
	}
	e.Status = StatusDisbursed
	e.AccountID = accountID
	if err := s.repo.UpdateStatus(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
