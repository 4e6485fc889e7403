package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nullpulse/sentinel/internal/model"
)

func (s *Store) CreateWarningStage(ctx context.Context, stage model.WarningStage) error {
	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	return s.observe("stages.create", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO warning_stages (id, switch_id, seconds_before_deadline)
			VALUES ($1,$2,$3)
		`, stage.ID, stage.SwitchID, stage.SecondsBeforeDeadline)
		return err
	})
}

// ListWarningStages returns stages sorted ascending by seconds_before_deadline,
// as required for §4.3's "evaluated in ascending-stage order" rule.
func (s *Store) ListWarningStages(ctx context.Context, switchID string) ([]model.WarningStage, error) {
	var out []model.WarningStage
	err := s.observe("stages.list", func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT id, switch_id, seconds_before_deadline
			FROM warning_stages
			WHERE switch_id = $1
			ORDER BY seconds_before_deadline ASC
		`, switchID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var st model.WarningStage
			if err := rows.Scan(&st.ID, &st.SwitchID, &st.SecondsBeforeDeadline); err != nil {
				return err
			}
			out = append(out, st)
		}
		return rows.Err()
	})
	return out, err
}
