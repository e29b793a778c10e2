package product

import (
	"context"
	"strings"

	"github.com/creditedge/backend/internal/domain/fault"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fault.Invalid("name", "required")
	}
	if in.MinAmountMinor <= 0 || in.MaxAmountMinor < in.MinAmountMinor {
		return nil, fault.Invalid("amount_range", "min must be positive and not exceed max")
	}
	if in.MinTerm <= 0 || in.MaxTerm < in.MinTerm {
		return nil, fault.Invalid("term_range", "min must be positive and not exceed max")
	}
	if in.InterestRateBPS < 0 {
		return nil, fault.Invalid("interest_rate_bps", "must be non-negative")
	}
	if !ValidMethod(in.InterestMethod) {
		return nil, fault.Invalid("interest_method", "unknown method")
	}
	if !ValidFrequency(in.RepaymentFrequency) {
		return nil, fault.Invalid("repayment_frequency", "unknown frequency")
	}
	if err := CheckMethodFrequency(in.InterestMethod, in.RepaymentFrequency); err != nil {
		return nil, err
	}
	if in.GracePeriodDays < 0 {
		return nil, fault.Invalid("grace_period_days", "must be non-negative")
	}
	if in.FeeFlatMinor < 0 || in.FeeRateBPS < 0 {
		return nil, fault.Invalid("fees", "must be non-negative")
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !ValidStatus(in.Status) {
		return nil, fault.Invalid("status", "unknown status")
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

// Update mutates a product. Once a product is referenced by an application,
// everything except the administrative status is frozen.
func (s *Service) Update(ctx context.Context, tenantID, id string, in UpdateInput) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return nil, err
	}
	if refs > 0 && touchesTerms(in) {
		return nil, fault.Conflict("product_in_use")
	}

	applyUpdate(e, in)
	if e.MinAmountMinor <= 0 || e.MaxAmountMinor < e.MinAmountMinor {
		return nil, fault.Invalid("amount_range", "min must be positive and not exceed max")
	}
	if e.MinTerm <= 0 || e.MaxTerm < e.MinTerm {
		return nil, fault.Invalid("term_range", "min must be positive and not exceed max")
	}
	if !ValidMethod(e.InterestMethod) {
		return nil, fault.Invalid("interest_method", "unknown method")
	}
	if !ValidFrequency(e.RepaymentFrequency) {
		return nil, fault.Invalid("repayment_frequency", "unknown frequency")
	}
	if err := CheckMethodFrequency(e.InterestMethod, e.RepaymentFrequency); err != nil {
		return nil, err
	}
	if !ValidStatus(e.Status) {
		return nil, fault.Invalid("status", "unknown status")
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an unreferenced product outright; a referenced product is
// archived instead so historical applications keep resolving.
func (s *Service) Delete(ctx context.Context, tenantID, id string) (archived bool, err error) {
	e, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return false, err
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return false, err
	}
	if refs == 0 {
		return false, s.repo.Delete(ctx, tenantID, id)
	}

	e.Status = StatusArchived
	if err := s.repo.Update(ctx, e); err != nil {
		return false, err
	}
	return true, nil
}

// CheckMethodFrequency enforces that seasonal accrual and the seasonal
// calendar come as a pair. A mismatched pairing is a configuration error
// surfaced now, not silently defaulted at generation time.
func CheckMethodFrequency(method, frequency string) error {
	if method == MethodSeasonal && frequency != FrequencySeasonal {
		return fault.Invalid("repayment_frequency", "seasonal interest requires seasonal frequency")
	}
	if frequency == FrequencySeasonal && method != MethodSeasonal {
		return fault.Invalid("interest_method", "seasonal frequency requires seasonal interest")
	}
	return nil
}

func touchesTerms(in UpdateInput) bool {
	return in.MinAmountMinor != nil || in.MaxAmountMinor != nil ||
		in.MinTerm != nil || in.MaxTerm != nil ||
		in.InterestRateBPS != nil || in.InterestMethod != nil ||
		in.RepaymentFrequency != nil || in.GracePeriodDays != nil ||
		in.FeeFlatMinor != nil || in.FeeRateBPS != nil ||
		in.RequiresCollateral != nil
}

func applyUpdate(e *Entity, in UpdateInput) {
	if in.Name != nil {
		e.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.MinAmountMinor != nil {
		e.MinAmountMinor = *in.MinAmountMinor
	}
	if in.MaxAmountMinor != nil {
		e.MaxAmountMinor = *in.MaxAmountMinor
	}
	if in.MinTerm != nil {
		e.MinTerm = *in.MinTerm
	}
	if in.MaxTerm != nil {
		e.MaxTerm = *in.MaxTerm
	}
	if in.InterestRateBPS != nil {
		e.InterestRateBPS = *in.InterestRateBPS
	}
	if in.InterestMethod != nil {
		e.InterestMethod = *in.InterestMethod
	}
	if in.RepaymentFrequency != nil {
		e.RepaymentFrequency = *in.RepaymentFrequency
	}
	if in.GracePeriodDays != nil {
		e.GracePeriodDays = *in.GracePeriodDays
	}
	if in.FeeFlatMinor != nil {
		e.FeeFlatMinor = *in.FeeFlatMinor
	}
	if in.FeeRateBPS != nil {
		e.FeeRateBPS = *in.FeeRateBPS
	}
	if in.RequiresCollateral != nil {
		e.RequiresCollateral = *in.RequiresCollateral
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
}
