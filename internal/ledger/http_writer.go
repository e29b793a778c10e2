package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPWriter posts journal entries to the accounting service's REST API.
type HTTPWriter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPWriter(baseURL, apiKey string) (*HTTPWriter, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing LEDGER_BASE_URL")
	}
	return &HTTPWriter{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

func (w *HTTPWriter) PostJournal(ctx context.Context, entry Entry) (string, error) {
	if !entry.Balanced() {
		return "", fmt.Errorf("unbalanced journal entry %s", entry.Reference)
	}

	body, _ := json.Marshal(entry)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/journal-entries", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ledger post failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			PostingRef string `json:"posting_ref"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Data.PostingRef == "" {
		return "", fmt.Errorf("ledger response missing posting_ref")
	}
	return payload.Data.PostingRef, nil
}
