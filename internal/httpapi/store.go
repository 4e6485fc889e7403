package httpapi

import (
	"context"
	"time"

	"github.com/nullpulse/sentinel/internal/model"
)

// Store is the narrow slice of store.Store the HTTP layer needs. Kept as
// its own interface, same reasoning as executor.Store and
// scheduler.Store: tests supply a fake without pulling in pgx.
type Store interface {
	CreateSwitch(ctx context.Context, s model.Switch) error
	DeleteSwitch(ctx context.Context, id string) error
	GetSwitch(ctx context.Context, id string) (model.Switch, error)
	ListSwitches(ctx context.Context) ([]model.Switch, error)
	UpdateLastCheckin(ctx context.Context, id string, ts time.Time) error

	CreateWarningStage(ctx context.Context, s model.WarningStage) error
	ListWarningStages(ctx context.Context, switchID string) ([]model.WarningStage, error)

	CreateAction(ctx context.Context, a model.Action) error
	ListActions(ctx context.Context, switchID string, isWarning bool) ([]model.Action, error)
}
