package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/creditedge/backend/internal/jobs"
	"github.com/creditedge/backend/internal/ledger"
	postgresrepo "github.com/creditedge/backend/internal/repository/postgres"
	"github.com/creditedge/backend/test/integration/testutil"
)

func TestWorkerPostsQueuedJournalEntry(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	outboxRepo := postgresrepo.NewOutboxRepository(pool)

	entry := ledger.Entry{
		Reference:    "pay-worker-1",
		TenantID:     "tenant-1",
		CurrencyCode: "ZMW",
		Memo:         "repayment",
		PostedAt:     time.Now().UTC(),
		Lines: []ledger.Line{
			ledger.Debit(ledger.AccountCash, 5000),
			ledger.Credit(ledger.AccountLoansReceivable, 4000),
			ledger.Credit(ledger.AccountInterestIncome, 1000),
		},
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	if err := outboxRepo.Enqueue(ctx, "post_journal", payload); err != nil {
		t.Fatalf("enqueue outbox: %v", err)
	}

	worker := jobs.NewWorker(outboxRepo, ledger.NewStubWriter())
	if err := worker.RunOnce(ctx, 10); err != nil {
		t.Fatalf("run worker: %v", err)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM outbox_jobs ORDER BY id DESC LIMIT 1`).Scan(&status); err != nil {
		t.Fatalf("query outbox status: %v", err)
	}
	if status != "done" {
		t.Fatalf("expected outbox status done, got %s", status)
	}
}

func TestWorkerParksUnbalancedEntry(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	outboxRepo := postgresrepo.NewOutboxRepository(pool)

	payload := []byte(`{"reference":"pay-bad","lines":[{"account_code":"1000-cash","side":"debit","amount_minor":5000}]}`)
	if err := outboxRepo.Enqueue(ctx, "post_journal", payload); err != nil {
		t.Fatalf("enqueue outbox: %v", err)
	}

	worker := jobs.NewWorker(outboxRepo, ledger.NewStubWriter())
	if err := worker.RunOnce(ctx, 10); err != nil {
		t.Fatalf("run worker: %v", err)
	}

	var status, lastError string
	if err := pool.QueryRow(ctx, `SELECT status, COALESCE(last_error, '') FROM outbox_jobs ORDER BY id DESC LIMIT 1`).Scan(&status, &lastError); err != nil {
		t.Fatalf("query outbox status: %v", err)
	}
	if status != "failed" || lastError != "unbalanced_entry" {
		t.Fatalf("expected failed/unbalanced_entry, got %s/%s", status, lastError)
	}
}
