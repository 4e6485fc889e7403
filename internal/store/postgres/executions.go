package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nullpulse/sentinel/internal/model"
)

func (s *Store) WasWarningSent(ctx context.Context, switchID string, stageSeconds int64) (bool, error) {
	var sent bool
	err := s.observe("executions.was_warning_sent", func() error {
		return s.pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM warning_executions WHERE switch_id = $1 AND stage_seconds = $2
			)
		`, switchID, stageSeconds).Scan(&sent)
	})
	return sent, err
}

func (s *Store) RecordWarningSent(ctx context.Context, switchID string, stageSeconds int64, ts time.Time) error {
	return s.observe("executions.record_warning_sent", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO warning_executions (id, switch_id, stage_seconds, executed_at)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (switch_id, stage_seconds) DO NOTHING
		`, uuid.NewString(), switchID, stageSeconds, ts)
		return err
	})
}

func (s *Store) ClearWarningExecutions(ctx context.Context, switchID string) error {
	return s.observe("executions.clear_warnings", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM warning_executions WHERE switch_id = $1`, switchID)
		return err
	})
}

func (s *Store) BeginExecution(ctx context.Context, switchID, actionID string, execType model.ExecutionType, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	err := s.observe("executions.begin", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO action_executions (id, switch_id, action_id, execution_type, started_at, status)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, id, switchID, actionID, string(execType), startedAt, string(model.ExecutionRunning))
		return err
	})
	return id, err
}

// FinishExecution derives the terminal status per model.DeriveStatus and
// writes it alongside the driver's outcome.
func (s *Store) FinishExecution(ctx context.Context, execID string, completedAt time.Time, exitCode *int64, stdout, stderr, errMsg *string) error {
	errStr := ""
	if errMsg != nil {
		errStr = *errMsg
	}
	status := model.DeriveStatus(errStr, exitCode)

	return s.observe("executions.finish", func() error {
		_, err := s.pool.Exec(ctx, `
			UPDATE action_executions
			SET completed_at = $2, status = $3, exit_code = $4, stdout = $5, stderr = $6, error_message = $7
			WHERE id = $1
		`, execID, completedAt, string(status), exitCode, stdout, stderr, errMsg)
		return err
	})
}

// ReapOrphaned closes out every still-"running" row at startup, per spec.md
// §4.5: a process crash leaves no trace of what was in flight, so these
// rows are conservatively marked failed rather than left dangling.
func (s *Store) ReapOrphaned(ctx context.Context) (int64, error) {
	var n int64
	err := s.observe("executions.reap_orphaned", func() error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE action_executions
			SET status = $1, error_message = $2, completed_at = NOW()
			WHERE status = $3
		`, string(model.ExecutionFailed), "Process crashed during execution", string(model.ExecutionRunning))
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}
