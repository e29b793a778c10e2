package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditedge/backend/internal/domain/application"
	"github.com/creditedge/backend/internal/domain/fault"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `id, tenant_id, client_id, product_id, requested_amount_minor, requested_term,
       purpose, status, approved_amount_minor, approved_term, approved_rate_bps,
       approver_id, approved_at, rejection_reason, account_id, created_at, updated_at`

func scanApplication(row pgx.Row) (*application.Entity, error) {
	out := &application.Entity{}
	err := row.Scan(
		&out.ID, &out.TenantID, &out.ClientID, &out.ProductID, &out.RequestedAmountMinor, &out.RequestedTerm,
		&out.Purpose, &out.Status, &out.ApprovedAmountMinor, &out.ApprovedTerm, &out.ApprovedRateBPS,
		&out.ApproverID, &out.ApprovedAt, &out.RejectionReason, &out.AccountID, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, e *application.Entity) (*application.Entity, error) {
	q := `
INSERT INTO loan_applications (tenant_id, client_id, product_id, requested_amount_minor, requested_term, purpose, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + applicationColumns
	return scanApplication(r.pool.QueryRow(ctx, q,
		e.TenantID, e.ClientID, e.ProductID, e.RequestedAmountMinor, e.RequestedTerm, e.Purpose, e.Status,
	))
}

func (r *ApplicationRepository) GetByID(ctx context.Context, tenantID, id string) (*application.Entity, error) {
	q := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE tenant_id = $1 AND id = $2`
	return scanApplication(r.pool.QueryRow(ctx, q, tenantID, id))
}

func (r *ApplicationRepository) List(ctx context.Context, f application.ListFilter) ([]application.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + applicationColumns + ` FROM loan_applications WHERE tenant_id = $1`)

	args := []any{f.TenantID}
	argPos := 2
	if strings.TrimSpace(f.ClientID) != "" {
		builder.WriteString(" AND client_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.ClientID)
		argPos++
	}
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Entity, 0)
	for rows.Next() {
		var item application.Entity
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.ClientID, &item.ProductID, &item.RequestedAmountMinor, &item.RequestedTerm,
			&item.Purpose, &item.Status, &item.ApprovedAmountMinor, &item.ApprovedTerm, &item.ApprovedRateBPS,
			&item.ApproverID, &item.ApprovedAt, &item.RejectionReason, &item.AccountID, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, e *application.Entity) error {
	q := `
UPDATE loan_applications
SET status = $3, approved_amount_minor = $4, approved_term = $5, approved_rate_bps = $6,
    approver_id = $7, approved_at = $8, rejection_reason = $9, account_id = $10, updated_at = NOW()
WHERE tenant_id = $1 AND id = $2
`
	tag, err := r.pool.Exec(ctx, q,
		e.TenantID, e.ID, e.Status, e.ApprovedAmountMinor, e.ApprovedTerm, e.ApprovedRateBPS,
		e.ApproverID, e.ApprovedAt, e.RejectionReason, e.AccountID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	q := `SELECT COUNT(*)::bigint FROM loan_applications WHERE tenant_id = $1`
	var n int64
	if err := r.pool.QueryRow(ctx, q, tenantID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
