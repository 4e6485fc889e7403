package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookDriverSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewWebhookDriver()
	cfg, _ := json.Marshal(WebhookConfig{URL: srv.URL, Method: "POST"})

	result, err := d.Run(context.Background(), cfg, ExecContext{SwitchID: "s1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
}

func TestWebhookDriverNonTwoxxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	d := NewWebhookDriver()
	cfg, _ := json.Marshal(WebhookConfig{URL: srv.URL, Method: "GET"})

	_, err := d.Run(context.Background(), cfg, ExecContext{SwitchID: "s1"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestWebhookDriverRejectsUnsupportedMethod(t *testing.T) {
	d := NewWebhookDriver()
	cfg, _ := json.Marshal(WebhookConfig{URL: "http://example.invalid", Method: "DELETE"})

	_, err := d.Run(context.Background(), cfg, ExecContext{SwitchID: "s1"})
	if err == nil {
		t.Fatal("expected error for unsupported method")
	}
}
