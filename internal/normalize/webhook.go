// Package normalize sends extracted invoice records to a normalization
// webhook (an n8n workflow in production) and returns the records it maps
// to stock sheet fields.
package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/stockbook/internal/core"
	"github.com/JonMunkholm/stockbook/internal/logging"
)

// CycleIDHeader carries the import cycle id so webhook executions can be
// traced back to an import.
const CycleIDHeader = "X-Cycle-ID"

// DefaultTimeout bounds one webhook call when the caller sets none.
const DefaultTimeout = 300 * time.Second

const maxResponseBytes = 25 << 20

// Webhook posts {"todos": records} and expects a JSON array of records
// back. A {"todos": [...]} object is accepted too.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook returns a client for url. A nil client gets one with timeout.
func NewWebhook(url string, client *http.Client, timeout time.Duration) (*Webhook, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("webhook: url is required")
	}
	if client == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Webhook{url: url, client: client}, nil
}

type payload struct {
	Todos []map[string]any `json:"todos"`
}

// Normalize implements core.Normalizer.
func (w *Webhook) Normalize(ctx context.Context, records []map[string]any) ([]map[string]any, error) {
	body, err := json.Marshal(payload{Todos: records})
	if err != nil {
		return nil, fmt.Errorf("webhook: encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := core.CycleIDFromContext(ctx); id != "" {
		req.Header.Set(CycleIDHeader, id)
	}

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("webhook: status=%d: %s", resp.StatusCode, msg)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("webhook: read response: %w", err)
	}
	out, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("webhook normalized records",
		"sent", len(records),
		"received", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func decodeRecords(raw []byte) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	dec := func(into any) error {
		d := json.NewDecoder(bytes.NewReader(raw))
		d.UseNumber()
		return d.Decode(into)
	}

	var out []map[string]any
	if raw[0] == '{' {
		var wrapped payload
		if err := dec(&wrapped); err != nil {
			return nil, fmt.Errorf("webhook: json decode error: %w", err)
		}
		out = wrapped.Todos
	} else if err := dec(&out); err != nil {
		return nil, fmt.Errorf("webhook: json decode error: %w", err)
	}
	return out, nil
}
