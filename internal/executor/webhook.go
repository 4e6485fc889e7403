package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const webhookTimeout = 30 * time.Second

// WebhookDriver fires an HTTP request at a configured URL. Allowed methods
// are GET and POST; anything else is a config error.
type WebhookDriver struct {
	client *http.Client
}

func NewWebhookDriver() *WebhookDriver {
	return &WebhookDriver{client: &http.Client{Timeout: webhookTimeout}}
}

func (d *WebhookDriver) Run(ctx context.Context, raw json.RawMessage, ec ExecContext) (Result, error) {
	var cfg WebhookConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Result{}, fmt.Errorf("failed to parse webhook config: %w", err)
	}

	method := strings.ToUpper(cfg.Method)
	if method != http.MethodGet && method != http.MethodPost {
		return Result{}, fmt.Errorf("unsupported HTTP method: %s", cfg.Method)
	}

	var body io.Reader
	if cfg.Body != nil {
		body = bytes.NewReader([]byte(*cfg.Body))
	}

	reqCtx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, cfg.URL, body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build webhook request: %w", err)
	}

	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if cfg.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		respBody = []byte("(failed to read body)")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{
			ExitCode: 0,
			Stdout:   fmt.Sprintf("Webhook executed successfully (HTTP %d)", resp.StatusCode),
			Stderr:   string(respBody),
		}, nil
	}

	return Result{}, fmt.Errorf("webhook failed with HTTP %d: %s", resp.StatusCode, string(respBody))
}
