package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nullpulse/sentinel/internal/model"
)

func (s *Store) CreateSwitch(ctx context.Context, sw model.Switch) error {
	return s.observe("switches.create", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO switches (
				id, name, description, api_token, timeout_seconds, last_checkin,
				last_trigger, status, created_at, trigger_count_max,
				trigger_interval_seconds, trigger_count_executed
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
			sw.ID, sw.Name, sw.Description, sw.APIToken, sw.TimeoutSeconds, sw.LastCheckin,
			sw.LastTrigger, string(sw.Status), sw.CreatedAt, sw.TriggerCountMax,
			sw.TriggerIntervalSeconds, sw.TriggerCountExecuted,
		)
		return err
	})
}

func (s *Store) DeleteSwitch(ctx context.Context, id string) error {
	return s.observe("switches.delete", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM switches WHERE id = $1`, id)
		return err
	})
}

const switchColumns = `
	id, name, description, api_token, timeout_seconds, last_checkin,
	last_trigger, status, created_at, trigger_count_max,
	trigger_interval_seconds, trigger_count_executed
`

func scanSwitch(row pgx.Row) (model.Switch, error) {
	var sw model.Switch
	var status string
	err := row.Scan(
		&sw.ID, &sw.Name, &sw.Description, &sw.APIToken, &sw.TimeoutSeconds, &sw.LastCheckin,
		&sw.LastTrigger, &status, &sw.CreatedAt, &sw.TriggerCountMax,
		&sw.TriggerIntervalSeconds, &sw.TriggerCountExecuted,
	)
	sw.Status = model.Status(status)
	return sw, err
}

func (s *Store) GetSwitch(ctx context.Context, id string) (model.Switch, error) {
	var sw model.Switch
	err := s.observe("switches.get", func() error {
		row := s.pool.QueryRow(ctx, `SELECT `+switchColumns+` FROM switches WHERE id = $1`, id)
		var scanErr error
		sw, scanErr = scanSwitch(row)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return scanErr
	})
	return sw, err
}

func (s *Store) listWhere(ctx context.Context, op, where string, args ...any) ([]model.Switch, error) {
	var out []model.Switch
	err := s.observe(op, func() error {
		rows, err := s.pool.Query(ctx, `SELECT `+switchColumns+` FROM switches `+where, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			sw, err := scanSwitch(rows)
			if err != nil {
				return err
			}
			out = append(out, sw)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) ListSwitches(ctx context.Context) ([]model.Switch, error) {
	return s.listWhere(ctx, "switches.list", `ORDER BY created_at ASC`)
}

func (s *Store) ListActive(ctx context.Context) ([]model.Switch, error) {
	return s.listWhere(ctx, "switches.list_active", `WHERE status = $1 ORDER BY created_at ASC`, string(model.StatusActive))
}

func (s *Store) ListTriggered(ctx context.Context) ([]model.Switch, error) {
	return s.listWhere(ctx, "switches.list_triggered", `WHERE status = $1 ORDER BY created_at ASC`, string(model.StatusTriggered))
}

// UpdateLastCheckin resets the deadline. Per spec.md §4.4 ("A successful
// check-in does not clear the switch's WarningExecution rows"), this is a
// single-column update only — WarningExecution rows survive until the
// switch is deleted. See §9's open question for why this may need to
// change and ClearWarningExecutions for the operator escape hatch.
func (s *Store) UpdateLastCheckin(ctx context.Context, id string, ts time.Time) error {
	return s.observe("switches.update_last_checkin", func() error {
		_, err := s.pool.Exec(ctx, `UPDATE switches SET last_checkin = $2 WHERE id = $1`, id, ts)
		return err
	})
}

// MarkTriggered is the atomic active->triggered transition: status,
// last_trigger, and trigger_count_executed=1 all move together.
func (s *Store) MarkTriggered(ctx context.Context, id string, ts time.Time) error {
	return s.observe("switches.mark_triggered", func() error {
		_, err := s.pool.Exec(ctx, `
			UPDATE switches
			SET status = $2, last_trigger = $3, trigger_count_executed = 1
			WHERE id = $1
		`, id, string(model.StatusTriggered), ts)
		return err
	})
}

// RecordRetrigger is the atomic re-fire counter bump: last_trigger advances
// and trigger_count_executed increments in a single statement, so
// concurrent ticks (in principle) cannot lose an update.
func (s *Store) RecordRetrigger(ctx context.Context, id string, ts time.Time) error {
	return s.observe("switches.record_retrigger", func() error {
		_, err := s.pool.Exec(ctx, `
			UPDATE switches
			SET last_trigger = $2, trigger_count_executed = trigger_count_executed + 1
			WHERE id = $1
		`, id, ts)
		return err
	})
}
