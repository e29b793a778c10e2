package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditedge/backend/internal/domain/fault"
	"github.com/creditedge/backend/internal/domain/product"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, tenant_id, name, description, min_amount_minor, max_amount_minor,
       min_term, max_term, interest_rate_bps, interest_method, repayment_frequency,
       grace_period_days, fee_flat_minor, fee_rate_bps, requires_collateral, status,
       created_at, updated_at`

func scanProduct(row pgx.Row) (*product.Entity, error) {
	out := &product.Entity{}
	err := row.Scan(
		&out.ID, &out.TenantID, &out.Name, &out.Description, &out.MinAmountMinor, &out.MaxAmountMinor,
		&out.MinTerm, &out.MaxTerm, &out.InterestRateBPS, &out.InterestMethod, &out.RepaymentFrequency,
		&out.GracePeriodDays, &out.FeeFlatMinor, &out.FeeRateBPS, &out.RequiresCollateral, &out.Status,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) Create(ctx context.Context, in product.CreateInput) (*product.Entity, error) {
	q := `
INSERT INTO loan_products (
  tenant_id, name, description, min_amount_minor, max_amount_minor,
  min_term, max_term, interest_rate_bps, interest_method, repayment_frequency,
  grace_period_days, fee_flat_minor, fee_rate_bps, requires_collateral, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING ` + productColumns
	return scanProduct(r.pool.QueryRow(ctx, q,
		in.TenantID, in.Name, in.Description, in.MinAmountMinor, in.MaxAmountMinor,
		in.MinTerm, in.MaxTerm, in.InterestRateBPS, in.InterestMethod, in.RepaymentFrequency,
		in.GracePeriodDays, in.FeeFlatMinor, in.FeeRateBPS, in.RequiresCollateral, in.Status,
	))
}

func (r *ProductRepository) GetByID(ctx context.Context, tenantID, id string) (*product.Entity, error) {
	q := `SELECT ` + productColumns + ` FROM loan_products WHERE tenant_id = $1 AND id = $2`
	return scanProduct(r.pool.QueryRow(ctx, q, tenantID, id))
}

func (r *ProductRepository) List(ctx context.Context, f product.ListFilter) ([]product.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + productColumns + ` FROM loan_products WHERE tenant_id = $1`)

	args := []any{f.TenantID}
	argPos := 2
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

	out := make([]product.Entity, 0)
	for rows.Next() {
		var item product.Entity
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.Name, &item.Description, &item.MinAmountMinor, &item.MaxAmountMinor,
			&item.MinTerm, &item.MaxTerm, &item.InterestRateBPS, &item.InterestMethod, &item.RepaymentFrequency,
			&item.GracePeriodDays, &item.FeeFlatMinor, &item.FeeRateBPS, &item.RequiresCollateral, &item.Status,
			&item.CreatedAt, &item.UpdatedAt,
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

func (r *ProductRepository) Update(ctx context.Context, e *product.Entity) error {
	q := `
UPDATE loan_products
SET name = $3, description = $4, min_amount_minor = $5, max_amount_minor = $6,
    min_term = $7, max_term = $8, interest_rate_bps = $9, interest_method = $10,
    repayment_frequency = $11, grace_period_days = $12, fee_flat_minor = $13,
    fee_rate_bps = $14, requires_collateral = $15, status = $16, updated_at = NOW()
WHERE tenant_id = $1 AND id = $2
`
	tag, err := r.pool.Exec(ctx, q,
		e.TenantID, e.ID, e.Name, e.Description, e.MinAmountMinor, e.MaxAmountMinor,
		e.MinTerm, e.MaxTerm, e.InterestRateBPS, e.InterestMethod,
		e.RepaymentFrequency, e.GracePeriodDays, e.FeeFlatMinor,
		e.FeeRateBPS, e.RequiresCollateral, e.Status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, tenantID, id string) error {
	q := `DELETE FROM loan_products WHERE tenant_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}

// CountReferences reports how many applications point at the product. A
// referenced product is frozen for term changes and archived instead of
// deleted.
func (r *ProductRepository) CountReferences(ctx context.Context, id string) (int64, error) {
	q := `SELECT COUNT(*)::bigint FROM loan_applications WHERE product_id = $1`
	var n int64
	if err := r.pool.QueryRow(ctx, q, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
