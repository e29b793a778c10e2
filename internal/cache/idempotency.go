package cache

import (
	"context"
	"encoding/json"
	"time"
)

// StoredResponse is the replayable outcome of an idempotent request.
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency caches responses keyed by tenant and client-supplied key so a
// retried request replays the original outcome instead of re-executing.
type Idempotency struct {
	store Store
	ttl   time.Duration
}

func NewIdempotency(store Store, ttl time.Duration) *Idempotency {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Idempotency{store: store, ttl: ttl}
}

func (i *Idempotency) key(tenantID, key string) string {
	return "idem:" + tenantID + ":" + key
}

func (i *Idempotency) Lookup(ctx context.Context, tenantID, key string) (*StoredResponse, bool, error) {
	raw, ok, err := i.store.Get(ctx, i.key(tenantID, key))
	if err != nil || !ok {
		return nil, false, err
	}
	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, nil
	}
	return &resp, true, nil
}

func (i *Idempotency) Remember(ctx context.Context, tenantID, key string, status int, body []byte) error {
	raw, err := json.Marshal(StoredResponse{Status: status, Body: body})
	if err != nil {
		return err
	}
	return i.store.Set(ctx, i.key(tenantID, key), raw, i.ttl)
}
