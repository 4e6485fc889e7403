package executor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type stubDriver struct {
	err error
}

func (d *stubDriver) Run(ctx context.Context, raw json.RawMessage, ec ExecContext) (Result, error) {
	if d.err != nil {
		return Result{}, d.err
	}
	return Result{ExitCode: 0}, nil
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	failing := &stubDriver{err: errors.New("downstream down")}
	b := NewCircuitBreakerDriver(failing, BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour})

	for i := 0; i < 2; i++ {
		if _, err := b.Run(context.Background(), nil, ExecContext{}); err == nil {
			t.Fatalf("call %d: expected downstream error", i)
		}
	}

	_, err := b.Run(context.Background(), nil, ExecContext{})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open after threshold failures, got %v", err)
	}
}

func TestCircuitBreakerHalfOpenRecovers(t *testing.T) {
	stub := &stubDriver{err: errors.New("down")}
	b := NewCircuitBreakerDriver(stub, BreakerConfig{FailureThreshold: 1, Cooldown: time.Millisecond, HalfOpenMaxCalls: 1})

	if _, err := b.Run(context.Background(), nil, ExecContext{}); err == nil {
		t.Fatal("expected initial failure")
	}
	if _, err := b.Run(context.Background(), nil, ExecContext{}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	stub.err = nil

	if _, err := b.Run(context.Background(), nil, ExecContext{}); err != nil {
		t.Fatalf("expected half-open probe to succeed, got %v", err)
	}
	if _, err := b.Run(context.Background(), nil, ExecContext{}); err != nil {
		t.Fatalf("expected breaker closed after successful probe, got %v", err)
	}
}
