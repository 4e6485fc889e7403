// Package executor dispatches configured actions by kind and records their
// outcome. It mirrors the reference worker's execute()/step.go shape: a
// tagged switch over a kind, continue-on-error, an audit trail that is the
// only authoritative record of what happened.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nullpulse/sentinel/internal/model"
	"github.com/nullpulse/sentinel/internal/observability"
)

// Result is what a driver returns on a non-error outcome.
type Result struct {
	ExitCode int64
	Stdout   string
	Stderr   string
}

// ExecContext carries the values drivers are allowed to see about the
// switch and execution kind they're running for (spec.md §4.2.3's
// SWITCH_ID / EXECUTION_TYPE environment injection, and a place to hang
// future per-action context without widening every Driver signature).
type ExecContext struct {
	SwitchID      string
	ExecutionType model.ExecutionType
}

// Driver executes one action kind. The driver set is closed: email,
// webhook, script (spec.md §9 "Polymorphic actions" — tagged dispatch over
// virtual dispatch, no plugin registry).
type Driver interface {
	Run(ctx context.Context, config json.RawMessage, ec ExecContext) (Result, error)
}

// Store is the narrow slice of store.Executions the runner needs, kept as
// its own interface so tests can fake it without depending on store.Store.
type Store interface {
	BeginExecution(ctx context.Context, switchID, actionID string, execType model.ExecutionType, startedAt time.Time) (string, error)
	FinishExecution(ctx context.Context, execID string, completedAt time.Time, exitCode *int64, stdout, stderr, errMsg *string) error
}

// Runner is the sequential, continue-on-error action runner of spec.md
// §4.2: it never aborts a sequence on a failing action. The only aggregate
// it reports is the failure count RunSequence returns for logging; the
// audit trail it writes via Store is authoritative.
type Runner struct {
	store   Store
	drivers map[model.ActionType]Driver
	prom    *observability.Prom
	nowFn   func() time.Time
}

func NewRunner(st Store, drivers map[model.ActionType]Driver, prom *observability.Prom) *Runner {
	return &Runner{
		store:   st,
		drivers: drivers,
		prom:    prom,
		nowFn:   time.Now,
	}
}

// RunSequence executes actions in order for one switch, never stopping on a
// failing action. It returns the number of actions that failed, purely for
// logging/metrics — callers must not branch scheduler behavior on it.
func (r *Runner) RunSequence(ctx context.Context, switchID string, actions []model.Action, execType model.ExecutionType) int {
	failed := 0
	for _, action := range actions {
		if err := r.runOne(ctx, switchID, action, execType); err != nil {
			failed++
		}
	}
	return failed
}

func (r *Runner) runOne(ctx context.Context, switchID string, action model.Action, execType model.ExecutionType) error {
	started := r.nowFn()

	execID, err := r.store.BeginExecution(ctx, switchID, action.ID, execType, started)
	if err != nil {
		slog.Default().Error("executor.begin_execution_failed",
			"switch_id", switchID, "action_id", action.ID, "err", err)
		return err
	}

	slog.Default().Info("executor.action_start",
		"switch_id", switchID, "action_id", action.ID, "kind", action.ActionType,
		"execution_type", execType, "exec_id", execID)

	driver, ok := r.drivers[action.ActionType]
	if !ok {
		errMsg := fmt.Sprintf("no driver registered for action type %q", action.ActionType)
		r.finish(ctx, execID, nil, nil, nil, &errMsg)
		return fmt.Errorf("%s", errMsg)
	}

	result, runErr := driver.Run(ctx, action.Config, ExecContext{SwitchID: switchID, ExecutionType: execType})

	completedAt := r.nowFn()
	var exitCode *int64
	var stdout, stderr, errMsg *string

	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	} else {
		ec := result.ExitCode
		exitCode = &ec
		stdout = &result.Stdout
		stderr = &result.Stderr
	}

	if err := r.store.FinishExecution(ctx, execID, completedAt, exitCode, stdout, stderr, errMsg); err != nil {
		slog.Default().Error("executor.finish_execution_failed",
			"switch_id", switchID, "action_id", action.ID, "exec_id", execID, "err", err)
	}

	if r.prom != nil {
		r.prom.ObserveAction(string(action.ActionType), string(execType), runErr == nil)
	}

	if runErr != nil {
		slog.Default().Warn("executor.action_failed",
			"switch_id", switchID, "action_id", action.ID, "exec_id", execID,
			"duration_ms", completedAt.Sub(started).Milliseconds(), "err", runErr)
		return runErr
	}

	slog.Default().Info("executor.action_done",
		"switch_id", switchID, "action_id", action.ID, "exec_id", execID,
		"duration_ms", completedAt.Sub(started).Milliseconds())
	return nil
}

func (r *Runner) finish(ctx context.Context, execID string, exitCode *int64, stdout, stderr, errMsg *string) {
	if err := r.store.FinishExecution(ctx, execID, r.nowFn(), exitCode, stdout, stderr, errMsg); err != nil {
		slog.Default().Error("executor.finish_execution_failed", "exec_id", execID, "err", err)
	}
}
