package ledger

import (
	"context"
	"fmt"
	"time"
)

// JournalWriter posts one balanced entry and returns the ledger's posting
// reference.
type JournalWriter interface {
	PostJournal(ctx context.Context, entry Entry) (string, error)
}

// StubWriter accepts any balanced entry without talking to a real ledger.
// Used in local and test environments.
type StubWriter struct{}

func NewStubWriter() *StubWriter {
	return &StubWriter{}
}

func (w *StubWriter) PostJournal(_ context.Context, entry Entry) (string, error) {
	if entry.Reference == "" {
		return "", fmt.Errorf("missing journal reference")
	}
	if !entry.Balanced() {
		return "", fmt.Errorf("unbalanced journal entry %s", entry.Reference)
	}
	return fmt.Sprintf("stub-%s-%x", entry.Reference, time.Now().UTC().UnixNano()), nil
}
