package model

import (
	"encoding/json"
	"errors"
	"time"
)

type ActionType string

const (
	ActionEmail   ActionType = "email"
	ActionWebhook ActionType = "webhook"
	ActionScript  ActionType = "script"
)

func (t ActionType) IsValid() bool {
	switch t {
	case ActionEmail, ActionWebhook, ActionScript:
		return true
	default:
		return false
	}
}

var ErrInvalidActionType = errors.New("invalid action type")

// Action is a configured responder: one of email/webhook/script, belonging
// either to the warning list or the final list of a switch.
type Action struct {
	ID          string
	SwitchID    string
	ActionOrder int
	ActionType  ActionType
	IsWarning   bool
	Config      json.RawMessage
}

type ExecutionType string

const (
	ExecutionWarning ExecutionType = "warning"
	ExecutionFinal   ExecutionType = "final"
)

type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// ActionExecution is the audit row for a single invocation of a driver.
type ActionExecution struct {
	ID            string
	SwitchID      string
	ActionID      string
	ExecutionType ExecutionType
	StartedAt     time.Time
	CompletedAt   *time.Time
	Status        ExecutionStatus
	ExitCode      *int64
	Stdout        *string
	Stderr        *string
	ErrorMessage  *string
}

// DeriveStatus implements the finish_execution status rule: failed if
// errMsg is non-empty or exitCode != 0, else completed.
func DeriveStatus(errMsg string, exitCode *int64) ExecutionStatus {
	if errMsg != "" {
		return ExecutionFailed
	}
	if exitCode != nil && *exitCode != 0 {
		return ExecutionFailed
	}
	return ExecutionCompleted
}
