package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nullpulse/sentinel/internal/model"
)

func (s *Store) CreateAction(ctx context.Context, a model.Action) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return s.observe("actions.create", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO actions (id, switch_id, action_order, action_type, is_warning, config)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, a.ID, a.SwitchID, a.ActionOrder, string(a.ActionType), a.IsWarning, a.Config)
		return err
	})
}

// ListActions returns the is_warning-partitioned action list for a switch,
// sorted by action_order, per spec.md §4.1.
func (s *Store) ListActions(ctx context.Context, switchID string, isWarning bool) ([]model.Action, error) {
	var out []model.Action
	err := s.observe("actions.list", func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT id, switch_id, action_order, action_type, is_warning, config
			FROM actions
			WHERE switch_id = $1 AND is_warning = $2
			ORDER BY action_order ASC
		`, switchID, isWarning)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a model.Action
			var actionType string
			if err := rows.Scan(&a.ID, &a.SwitchID, &a.ActionOrder, &actionType, &a.IsWarning, &a.Config); err != nil {
				return err
			}
			a.ActionType = model.ActionType(actionType)
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}
