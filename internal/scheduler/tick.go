package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nullpulse/sentinel/internal/model"
)

// sweepActive implements spec.md §4.3 step 1: for every active switch,
// expiry takes precedence over warnings. A switch that expires this tick
// skips the rest of its per-switch work for this tick.
func (s *Service) sweepActive(ctx context.Context, now time.Time) {
	switches, err := s.store.ListActive(ctx)
	if err != nil {
		slog.Default().Error("scheduler.list_active_failed", "err", err)
		return
	}

	for _, sw := range switches {
		if sw.IsExpired(now) {
			s.fireExpiry(ctx, sw, now)
			continue
		}
		s.evaluateWarnings(ctx, sw, now)
	}
}

func (s *Service) fireExpiry(ctx context.Context, sw model.Switch, now time.Time) {
	actions, err := s.store.ListActions(ctx, sw.ID, false)
	if err != nil {
		slog.Default().Error("scheduler.list_final_actions_failed", "switch_id", sw.ID, "err", err)
		return
	}

	s.runner.RunSequence(ctx, sw.ID, actions, model.ExecutionFinal)

	if err := s.store.MarkTriggered(ctx, sw.ID, now); err != nil {
		slog.Default().Error("scheduler.mark_triggered_failed", "switch_id", sw.ID, "err", err)
		return
	}

	slog.Default().Warn("scheduler.switch_triggered", "switch_id", sw.ID, "switch_name", sw.Name)
}

// evaluateWarnings fires each pending-but-unsent warning stage in
// ascending-stage order (spec.md §4.3 step 1, second branch). Each stage
// fires at most once per deadline cycle; was_warning_sent is the
// idempotence gate and record_warning_sent is written only after the
// sequential run returns.
func (s *Service) evaluateWarnings(ctx context.Context, sw model.Switch, now time.Time) {
	stages, err := s.store.ListWarningStages(ctx, sw.ID)
	if err != nil {
		slog.Default().Error("scheduler.list_warning_stages_failed", "switch_id", sw.ID, "err", err)
		return
	}

	age := sw.AgeSeconds(now)

	for _, stage := range stages {
		threshold := stage.WarningThreshold(sw.TimeoutSeconds)
		if age < threshold {
			continue
		}

		sent, err := s.store.WasWarningSent(ctx, sw.ID, stage.SecondsBeforeDeadline)
		if err != nil {
			slog.Default().Error("scheduler.was_warning_sent_failed", "switch_id", sw.ID, "stage", stage.SecondsBeforeDeadline, "err", err)
			continue
		}
		if sent {
			continue
		}

		actions, err := s.store.ListActions(ctx, sw.ID, true)
		if err != nil {
			slog.Default().Error("scheduler.list_warning_actions_failed", "switch_id", sw.ID, "err", err)
			continue
		}

		s.runner.RunSequence(ctx, sw.ID, actions, model.ExecutionWarning)

		if err := s.store.RecordWarningSent(ctx, sw.ID, stage.SecondsBeforeDeadline, now); err != nil {
			slog.Default().Error("scheduler.record_warning_sent_failed", "switch_id", sw.ID, "stage", stage.SecondsBeforeDeadline, "err", err)
		}

		slog.Default().Info("scheduler.warning_sent", "switch_id", sw.ID, "stage_seconds", stage.SecondsBeforeDeadline)
	}
}

// sweepTriggered implements spec.md §4.3 step 2: triggered switches re-fire
// on trigger_interval_seconds cadence, capped by trigger_count_max (0 =
// unbounded). This runs after sweepActive so a switch that just expired
// this tick is never also re-fired this tick.
func (s *Service) sweepTriggered(ctx context.Context, now time.Time) {
	switches, err := s.store.ListTriggered(ctx)
	if err != nil {
		slog.Default().Error("scheduler.list_triggered_failed", "err", err)
		return
	}

	for _, sw := range switches {
		if !shouldRefire(sw, now) {
			continue
		}

		actions, err := s.store.ListActions(ctx, sw.ID, false)
		if err != nil {
			slog.Default().Error("scheduler.list_final_actions_failed", "switch_id", sw.ID, "err", err)
			continue
		}

		s.runner.RunSequence(ctx, sw.ID, actions, model.ExecutionFinal)

		if err := s.store.RecordRetrigger(ctx, sw.ID, now); err != nil {
			slog.Default().Error("scheduler.record_retrigger_failed", "switch_id", sw.ID, "err", err)
			continue
		}

		slog.Default().Info("scheduler.switch_refired", "switch_id", sw.ID, "switch_name", sw.Name)
	}
}

func shouldRefire(sw model.Switch, now time.Time) bool {
	withinCap := sw.TriggerCountMax == 0 || sw.TriggerCountExecuted < sw.TriggerCountMax
	if !withinCap || sw.LastTrigger == nil {
		return false
	}
	return now.Sub(*sw.LastTrigger) >= time.Duration(sw.TriggerIntervalSeconds)*time.Second
}
