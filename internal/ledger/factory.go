package ledger

import (
	"fmt"
	"strings"

	"github.com/creditedge/backend/internal/config"
)

func NewWriterFromConfig(cfg config.Config) (JournalWriter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.LedgerWriterMode))
	if mode == "" || mode == "stub" {
		return NewStubWriter(), nil
	}
	if mode != "http" {
		return nil, fmt.Errorf("invalid LEDGER_WRITER_MODE: %s", cfg.LedgerWriterMode)
	}
	return NewHTTPWriter(cfg.LedgerBaseURL, cfg.LedgerAPIKey)
}
