package executor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState string

const (
	breakerClosed   breakerState = "closed"
	breakerOpen     breakerState = "open"
	breakerHalfOpen breakerState = "half_open"
)

// BreakerConfig tunes CircuitBreakerDriver. Zero values fall back to
// sentinel defaults, the same pattern the reference notifier uses.
type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
	HalfOpenMaxCalls int
}

// CircuitBreakerDriver wraps a Driver so that a consistently-failing
// downstream (a dead SMTP relay, an unreachable webhook host) fails fast
// instead of burning the full per-call timeout on every tick — the
// scheduler's serialized loop means one stuck action delays every other
// switch's evaluation this tick.
type CircuitBreakerDriver struct {
	inner Driver
	cfg   BreakerConfig

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewCircuitBreakerDriver(inner Driver, cfg BreakerConfig) *CircuitBreakerDriver {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return &CircuitBreakerDriver{inner: inner, cfg: cfg, state: breakerClosed}
}

func (b *CircuitBreakerDriver) Run(ctx context.Context, raw json.RawMessage, ec ExecContext) (Result, error) {
	if !b.allowRequest() {
		return Result{}, ErrCircuitOpen
	}

	result, err := b.inner.Run(ctx, raw, ec)
	b.afterRequest(err)
	return result, err
}

func (b *CircuitBreakerDriver) allowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) >= b.cfg.Cooldown {
			b.state = breakerHalfOpen
			b.halfOpenInFlight = 0
			return true
		}
		return false
	case breakerHalfOpen:
		if b.halfOpenInFlight >= b.cfg.HalfOpenMaxCalls {
			return false
		}
		b.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (b *CircuitBreakerDriver) afterRequest(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}

	if err == nil {
		b.consecutiveFailures = 0
		b.state = breakerClosed
		return
	}

	b.consecutiveFailures++

	if b.state == breakerHalfOpen {
		b.state = breakerOpen
		b.openedAt = time.Now()
		return
	}

	if b.consecutiveFailures >= b.cfg.FailureThreshold {
		b.state = breakerOpen
		b.openedAt = time.Now()
	}
}
