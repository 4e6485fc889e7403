package model

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusTriggered Status = "triggered"
	StatusPaused    Status = "paused"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusTriggered, StatusPaused:
		return true
	default:
		return false
	}
}

var ErrNotFound = errors.New("switch not found")

// Switch is the unit of supervision: an external agent must check in before
// LastCheckin+TimeoutSeconds elapses, or the final actions fire.
type Switch struct {
	ID                     string
	Name                   string
	Description            *string
	APIToken               string
	TimeoutSeconds         int64
	LastCheckin            time.Time
	LastTrigger            *time.Time
	Status                 Status
	CreatedAt              time.Time
	TriggerCountMax        int64
	TriggerIntervalSeconds int64
	TriggerCountExecuted   int64
}

// CreateSwitchRequest captures the fields a caller supplies when creating a
// switch; everything else (ID, token, timestamps) is generated server-side.
type CreateSwitchRequest struct {
	Name                   string
	Description            *string
	TimeoutSeconds         int64
	TriggerCountMax        int64
	TriggerIntervalSeconds int64
}

func (r CreateSwitchRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.TimeoutSeconds < 1 {
		return errors.New("timeout_seconds must be >= 1")
	}
	if r.TriggerCountMax < 0 {
		return errors.New("trigger_count_max must be >= 0")
	}
	if r.TriggerIntervalSeconds < 1 {
		return errors.New("trigger_interval_seconds must be >= 1")
	}
	return nil
}

// NewSwitch materializes a Switch from a validated CreateSwitchRequest, the
// way job.New mints a Job from a job.CreateRequest in the reference worker.
func NewSwitch(req CreateSwitchRequest, now time.Time) (Switch, error) {
	token, err := GenerateAPIToken()
	if err != nil {
		return Switch{}, err
	}

	return Switch{
		ID:                     uuid.NewString(),
		Name:                   req.Name,
		Description:            req.Description,
		APIToken:               token,
		TimeoutSeconds:         req.TimeoutSeconds,
		LastCheckin:            now,
		Status:                 StatusActive,
		CreatedAt:              now,
		TriggerCountMax:        req.TriggerCountMax,
		TriggerIntervalSeconds: req.TriggerIntervalSeconds,
		TriggerCountExecuted:   0,
	}, nil
}

// GenerateAPIToken returns 64 hex characters (256 bits of entropy), the
// secret a check-in request must present as a bearer token.
func GenerateAPIToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Deadline is LastCheckin+TimeoutSeconds, the instant expiry fires.
func (s Switch) Deadline() time.Time {
	return s.LastCheckin.Add(time.Duration(s.TimeoutSeconds) * time.Second)
}

// AgeSeconds is how long it has been since the last check-in, as of now.
func (s Switch) AgeSeconds(now time.Time) int64 {
	return int64(now.Sub(s.LastCheckin).Seconds())
}

// IsExpired reports whether age has reached the deadline (inclusive, per
// the boundary behavior "age = deadline triggers expiry").
func (s Switch) IsExpired(now time.Time) bool {
	return s.AgeSeconds(now) >= s.TimeoutSeconds
}
