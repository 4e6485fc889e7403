// Package scheduler runs the watchdog's periodic control loop: one tick at
// a time, one switch at a time, one action at a time, by design — see
// spec.md §5. The loop never races itself; check-ins race it from the HTTP
// side, and the store's atomic updates are the only synchronization that
// requires.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/nullpulse/sentinel/internal/executor"
	"github.com/nullpulse/sentinel/internal/model"
	"github.com/nullpulse/sentinel/internal/observability"
)

const DefaultTickInterval = 10 * time.Second

// Store is the slice of store.Store the scheduler needs. Kept narrow so
// tests can supply an in-memory fake instead of a live Postgres pool.
type Store interface {
	ListActive(ctx context.Context) ([]model.Switch, error)
	ListTriggered(ctx context.Context) ([]model.Switch, error)
	ListWarningStages(ctx context.Context, switchID string) ([]model.WarningStage, error)
	ListActions(ctx context.Context, switchID string, isWarning bool) ([]model.Action, error)
	WasWarningSent(ctx context.Context, switchID string, stageSeconds int64) (bool, error)
	RecordWarningSent(ctx context.Context, switchID string, stageSeconds int64, ts time.Time) error
	MarkTriggered(ctx context.Context, id string, ts time.Time) error
	RecordRetrigger(ctx context.Context, id string, ts time.Time) error
	ReapOrphaned(ctx context.Context) (int64, error)
}

type Options struct {
	TickInterval time.Duration
}

// Service is the watchdog scheduler: periodic tick, evaluates every
// active/triggered switch, decides what to fire.
type Service struct {
	store  Store
	runner *executor.Runner
	prom   *observability.Prom
	opts   Options
	nowFn  func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stopFn    context.CancelFunc
	doneCh    chan struct{}

	readyMu sync.RWMutex
	ready   bool
}

func New(st Store, runner *executor.Runner, prom *observability.Prom, opts Options) *Service {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Service{
		store:  st,
		runner: runner,
		prom:   prom,
		opts:   opts,
		nowFn:  time.Now,
	}
}

// Recover runs crash recovery (spec.md §4.5): every action execution still
// marked "running" at startup is conclusively a process that died mid-call.
// Must run before the first tick.
func (s *Service) Recover(ctx context.Context) error {
	n, err := s.store.ReapOrphaned(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Default().Warn("scheduler.reaped_orphaned_executions", "count", n)
	}
	return nil
}

// Start begins the tick loop in a background goroutine.
func (s *Service) Start(parent context.Context) {
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.stopFn = cancel
		s.doneCh = make(chan struct{})

		s.readyMu.Lock()
		s.ready = true
		s.readyMu.Unlock()

		go func() {
			defer close(s.doneCh)

			for {
				s.tick(ctx)

				select {
				case <-ctx.Done():
					return
				case <-time.After(s.opts.TickInterval):
				}
			}
		}()
	})
}

// Stop cancels the loop and waits for the in-flight tick to drain, bounded
// by ctx.
func (s *Service) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.readyMu.Lock()
		s.ready = false
		s.readyMu.Unlock()

		if s.stopFn != nil {
			s.stopFn()
		}
		if s.doneCh == nil {
			return
		}
		select {
		case <-s.doneCh:
		case <-ctx.Done():
		}
	})
}

func (s *Service) Ready() bool {
	s.readyMu.RLock()
	defer s.readyMu.RUnlock()
	return s.ready
}

var tracer = otel.Tracer("sentinel/scheduler")

func (s *Service) tick(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "scheduler.tick")
	defer span.End()

	started := time.Now()
	now := s.nowFn()

	s.sweepActive(ctx, now)
	s.sweepTriggered(ctx, now)

	if s.prom != nil {
		s.prom.ObserveTick(time.Since(started))
	}
}
