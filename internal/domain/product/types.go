package product

import (
	"context"
	"time"
)

// Interest accrual method for a loan product.
const (
	MethodFlat            = "flat"
	MethodReducingBalance = "reducing_balance"
	MethodSeasonal        = "seasonal"
)

// Repayment frequency, i.e. the installment calendar rule.
const (
	FrequencyMonthly  = "monthly"
	FrequencyWeekly   = "weekly"
	FrequencyDaily    = "daily"
	FrequencySeasonal = "seasonal"
	FrequencyLumpSum  = "lump_sum"
)

// Administrative status. Products referenced by applications are never
// deleted, only archived.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusArchived  = "archived"
)

type Entity struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	MinAmountMinor     int64     `json:"min_amount_minor"`
	MaxAmountMinor     int64     `json:"max_amount_minor"`
	MinTerm            int32     `json:"min_term"`
	MaxTerm            int32     `json:"max_term"`
	InterestRateBPS    int32     `json:"interest_rate_bps"`
	InterestMethod     string    `json:"interest_method"`
	RepaymentFrequency string    `json:"repayment_frequency"`
	GracePeriodDays    int32     `json:"grace_period_days"`
	FeeFlatMinor       int64     `json:"fee_flat_minor"`
	FeeRateBPS         int32     `json:"fee_rate_bps"`
	RequiresCollateral bool      `json:"requires_collateral"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CreateInput struct {
	TenantID           string
	Name               string
	Description        string
	MinAmountMinor     int64
	MaxAmountMinor     int64
	MinTerm            int32
	MaxTerm            int32
	InterestRateBPS    int32
	InterestMethod     string
	RepaymentFrequency string
	GracePeriodDays    int32
	FeeFlatMinor       int64
	FeeRateBPS         int32
	RequiresCollateral bool
	Status             string
}

type UpdateInput struct {
	Name               *string
	Description        *string
	MinAmountMinor     *int64
	MaxAmountMinor     *int64
	MinTerm            *int32
	MaxTerm            *int32
	InterestRateBPS    *int32
	InterestMethod     *string
	RepaymentFrequency *string
	GracePeriodDays    *int32
	FeeFlatMinor       *int64
	FeeRateBPS         *int32
	RequiresCollateral *bool
	Status             *string
}

type ListFilter struct {
	TenantID string
	Status   string
	Limit    int32
	Offset   int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, tenantID, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	Update(ctx context.Context, e *Entity) error
	Delete(ctx context.Context, tenantID, id string) error
	CountReferences(ctx context.Context, id string) (int64, error)
}

func ValidMethod(method string) bool {
	switch method {
	case MethodFlat, MethodReducingBalance, MethodSeasonal:
		return true
	}
	return false
}

func ValidFrequency(frequency string) bool {
	switch frequency {
	case FrequencyMonthly, FrequencyWeekly, FrequencyDaily, FrequencySeasonal, FrequencyLumpSum:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusActive, StatusSuspended, StatusArchived:
		return true
	}
	return false
}
