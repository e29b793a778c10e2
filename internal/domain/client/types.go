package client

import (
	"context"
	"time"
)

const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusBlacklisted = "blacklisted"
)

type Entity struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	IDHash      []byte    `json:"-"`
	CreditScore int32     `json:"credit_score"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateInput struct {
	TenantID    string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	IDNumber    string
	CreditScore int32
}

type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	CreditScore *int32
	Status      *string
}

type ListFilter struct {
	TenantID string
	Status   string
	Search   string
	Limit    int32
	Offset   int32
}

type Repository interface {
	Create(ctx context.Context, e *Entity) (*Entity, error)
	GetByID(ctx context.Context, tenantID, id string) (*Entity, error)
	GetByIDHash(ctx context.Context, tenantID string, idHash []byte) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	Update(ctx context.Context, e *Entity) error
	SetStatus(ctx context.Context, tenantID, id, status string) error
}
