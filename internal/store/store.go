// Package store defines the durable-state contract the scheduler and the
// check-in endpoint depend on. internal/store/postgres provides the
// concrete Postgres implementation; everything upstream of this package is
// written against the interfaces here so it can be exercised with fakes in
// tests.
package store

import (
	"context"
	"time"

	"github.com/nullpulse/sentinel/internal/model"
)

// Switches groups every operation the scheduler, the check-in endpoint, and
// the management API need against the switches table.
type Switches interface {
	CreateSwitch(ctx context.Context, s model.Switch) error
	DeleteSwitch(ctx context.Context, id string) error
	GetSwitch(ctx context.Context, id string) (model.Switch, error)
	ListSwitches(ctx context.Context) ([]model.Switch, error)
	ListActive(ctx context.Context) ([]model.Switch, error)
	ListTriggered(ctx context.Context) ([]model.Switch, error)
	UpdateLastCheckin(ctx context.Context, id string, ts time.Time) error
	MarkTriggered(ctx context.Context, id string, ts time.Time) error
	RecordRetrigger(ctx context.Context, id string, ts time.Time) error
}

// Stages groups warning-stage configuration reads/writes.
type Stages interface {
	CreateWarningStage(ctx context.Context, s model.WarningStage) error
	ListWarningStages(ctx context.Context, switchID string) ([]model.WarningStage, error)
}

// Actions groups configured-responder reads/writes.
type Actions interface {
	CreateAction(ctx context.Context, a model.Action) error
	ListActions(ctx context.Context, switchID string, isWarning bool) ([]model.Action, error)
}

// Executions groups the idempotence marker and audit-trail operations.
type Executions interface {
	WasWarningSent(ctx context.Context, switchID string, stageSeconds int64) (bool, error)
	RecordWarningSent(ctx context.Context, switchID string, stageSeconds int64, ts time.Time) error
	ClearWarningExecutions(ctx context.Context, switchID string) error

	BeginExecution(ctx context.Context, switchID, actionID string, execType model.ExecutionType, startedAt time.Time) (string, error)
	FinishExecution(ctx context.Context, execID string, completedAt time.Time, exitCode *int64, stdout, stderr, errMsg *string) error

	ReapOrphaned(ctx context.Context) (int64, error)
}

// Store is the full durable-state contract of spec.md §4.1.
type Store interface {
	Switches
	Stages
	Actions
	Executions
}
