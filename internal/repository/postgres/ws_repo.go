package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditedge/backend/internal/ws"
)

type WSRepository struct {
	pool *pgxpool.Pool
}

func NewWSRepository(pool *pgxpool.Pool) *WSRepository {
	return &WSRepository{pool: pool}
}

func (r *WSRepository) ListPaymentEventsSince(ctx context.Context, lastID int64, limit int32) ([]ws.RealtimeEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT id, account_id, tenant_id, amount_minor, currency_code, recorded_at
FROM payment_events
WHERE id > $1
ORDER BY id ASC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ws.RealtimeEvent, 0)
	for rows.Next() {
		var ev ws.RealtimeEvent
		if err := rows.Scan(&ev.ID, &ev.AccountID, &ev.TenantID, &ev.AmountMinor, &ev.Currency, &ev.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
