package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v" {
		t.Fatalf("get: %q ok=%v err=%v", val, ok, err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("fresh key missing")
	}

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expired key still present")
	}
}

func TestIdempotencyRememberAndLookup(t *testing.T) {
	idem := NewIdempotency(NewMemoryStore(), time.Hour)
	ctx := context.Background()

	if _, ok, err := idem.Lookup(ctx, "t-1", "key-1"); err != nil || ok {
		t.Fatalf("empty lookup: ok=%v err=%v", ok, err)
	}

	body := []byte(`{"success":true}`)
	if err := idem.Remember(ctx, "t-1", "key-1", 201, body); err != nil {
		t.Fatalf("remember: %v", err)
	}

	resp, ok, err := idem.Lookup(ctx, "t-1", "key-1")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if resp.Status != 201 || string(resp.Body) != string(body) {
		t.Fatalf("replayed %d %s", resp.Status, resp.Body)
	}

	// a different tenant never sees the cached response
	if _, ok, _ := idem.Lookup(ctx, "t-2", "key-1"); ok {
		t.Fatal("cross-tenant replay")
	}
}
