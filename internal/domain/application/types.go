package application

import (
	"context"
	"time"
)

// Lifecycle states. rejected, canceled and disbursed are terminal.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusCanceled    = "canceled"
	StatusDisbursed   = "disbursed"
)

type Entity struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"tenant_id"`
	ClientID             string     `json:"client_id"`
	ProductID            string     `json:"product_id"`
	RequestedAmountMinor int64      `json:"requested_amount_minor"`
	RequestedTerm        int32      `json:"requested_term"`
	Purpose              string     `json:"purpose"`
	Status               string     `json:"status"`
	ApprovedAmountMinor  int64      `json:"approved_amount_minor,omitempty"`
	ApprovedTerm         int32      `json:"approved_term,omitempty"`
	ApprovedRateBPS      int32      `json:"approved_rate_bps,omitempty"`
	ApproverID           string     `json:"approver_id,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	AccountID            string     `json:"account_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type CreateInput struct {
	TenantID             string
	ClientID             string
	ProductID            string
	RequestedAmountMinor int64
	RequestedTerm        int32
	Purpose              string
}

type ApproveInput struct {
	ApprovedAmountMinor int64
	ApprovedTerm        int32
	ApprovedRateBPS     int32
	ApproverID          string
}

type ListFilter struct {
	TenantID string
	ClientID string
	Status   string
	Limit    int32
	Offset   int32
}

type Repository interface {
	Create(ctx context.Context, e *Entity) (*Entity, error)
	GetByID(ctx context.Context, tenantID, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	UpdateStatus(ctx context.Context, e *Entity) error
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

// Terminal reports whether no further transitions are allowed from status.
func Terminal(status string) bool {
	switch status {
	case StatusRejected, StatusCanceled, StatusDisbursed:
		return true
	}
	return false
}
