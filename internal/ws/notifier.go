package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type RealtimeEvent struct {
	ID          int64
	AccountID   string
	TenantID    string
	AmountMinor int64
	Currency    string
	RecordedAt  time.Time
}

type RealtimeRepository interface {
	ListPaymentEventsSince(ctx context.Context, lastID int64, limit int32) ([]RealtimeEvent, error)
}

// Notifier tails the payment event stream and fans each event out to the
// tenant-wide and per-account channels.
type Notifier struct {
	repo         RealtimeRepository
	hub          *Hub
	pollInterval time.Duration
	lastID       int64
}

func NewNotifier(repo RealtimeRepository, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{repo: repo, hub: hub, pollInterval: pollInterval}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	events, err := n.repo.ListPaymentEventsSince(ctx, n.lastID, 100)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.ID > n.lastID {
			n.lastID = ev.ID
		}
		payload, _ := json.Marshal(map[string]any{
			"event": "payment_recorded",
			"data": map[string]any{
				"account_id":   ev.AccountID,
				"tenant_id":    ev.TenantID,
				"amount_minor": ev.AmountMinor,
				"currency":     ev.Currency,
				"recorded_at":  ev.RecordedAt.UTC().Format(time.RFC3339),
			},
		})
		n.hub.Publish(fmt.Sprintf("tenant:payments:%s", ev.TenantID), payload)
		n.hub.Publish("account:payments:"+ev.AccountID, payload)
	}
	return nil
}
