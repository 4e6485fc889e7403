package model

import (
	"errors"
	"time"
)

// WarningStage configures a lead time before the deadline at which warning
// actions fire at most once. A check-in does not clear the stage's
// WarningExecution marker, so a stage that has fired does not fire again in
// later deadline cycles.
type WarningStage struct {
	ID                    string
	SwitchID              string
	SecondsBeforeDeadline int64
}

// ValidateAgainstTimeout enforces invariant 2: 0 < seconds_before_deadline <
// switch.timeout_seconds.
func (s WarningStage) ValidateAgainstTimeout(timeoutSeconds int64) error {
	if s.SecondsBeforeDeadline <= 0 {
		return errors.New("seconds_before_deadline must be > 0")
	}
	if s.SecondsBeforeDeadline >= timeoutSeconds {
		return errors.New("seconds_before_deadline must be < timeout_seconds")
	}
	return nil
}

// WarningThreshold is the switch-age (seconds since last check-in) at which
// this stage becomes due: timeout_seconds - seconds_before_deadline.
func (s WarningStage) WarningThreshold(timeoutSeconds int64) int64 {
	return timeoutSeconds - s.SecondsBeforeDeadline
}

// WarningExecution is the idempotence marker recording that a given
// (switch, stage) warning has already been sent; it survives check-ins and
// is removed only with the switch or by ClearWarningExecutions.
type WarningExecution struct {
	ID         string
	SwitchID   string
	StageSec   int64
	ExecutedAt time.Time
}
