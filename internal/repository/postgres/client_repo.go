package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditedge/backend/internal/domain/client"
	"github.com/creditedge/backend/internal/domain/fault"
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientColumns = `id, tenant_id, first_name, last_name, email, phone, national_id_hash, credit_score, status, created_at, updated_at`

func scanClient(row pgx.Row) (*client.Entity, error) {
	out := &client.Entity{}
	err := row.Scan(
		&out.ID, &out.TenantID, &out.FirstName, &out.LastName, &out.Email, &out.Phone,
		&out.IDHash, &out.CreditScore, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ClientRepository) Create(ctx context.Context, e *client.Entity) (*client.Entity, error) {
	q := `
INSERT INTO clients (tenant_id, first_name, last_name, email, phone, national_id_hash, credit_score, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + clientColumns
	return scanClient(r.pool.QueryRow(ctx, q,
		e.TenantID, e.FirstName, e.LastName, e.Email, e.Phone, e.IDHash, e.CreditScore, e.Status,
	))
}

func (r *ClientRepository) GetByID(ctx context.Context, tenantID, id string) (*client.Entity, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND id = $2`
	return scanClient(r.pool.QueryRow(ctx, q, tenantID, id))
}

func (r *ClientRepository) GetByIDHash(ctx context.Context, tenantID string, idHash []byte) (*client.Entity, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND national_id_hash = $2`
	return scanClient(r.pool.QueryRow(ctx, q, tenantID, idHash))
}

func (r *ClientRepository) List(ctx context.Context, f client.ListFilter) ([]client.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1`)

	args := []any{f.TenantID}
	argPos := 2
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	if strings.TrimSpace(f.Search) != "" {
		builder.WriteString(" AND (first_name ILIKE $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(" OR last_name ILIKE $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(" OR phone ILIKE $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(")")
		args = append(args, "%"+strings.TrimSpace(f.Search)+"%")
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

	out := make([]client.Entity, 0)
	for rows.Next() {
		var item client.Entity
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.FirstName, &item.LastName, &item.Email, &item.Phone,
			&item.IDHash, &item.CreditScore, &item.Status, &item.CreatedAt, &item.UpdatedAt,
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

func (r *ClientRepository) Update(ctx context.Context, e *client.Entity) error {
	q := `
UPDATE clients
SET first_name = $3, last_name = $4, email = $5, phone = $6, credit_score = $7, status = $8, updated_at = NOW()
WHERE tenant_id = $1 AND id = $2
`
	tag, err := r.pool.Exec(ctx, q, e.TenantID, e.ID, e.FirstName, e.LastName, e.Email, e.Phone, e.CreditScore, e.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) SetStatus(ctx context.Context, tenantID, id, status string) error {
	q := `UPDATE clients SET status = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, tenantID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}
