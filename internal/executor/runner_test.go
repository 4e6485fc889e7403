package executor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nullpulse/sentinel/internal/model"
)

type fakeExecution struct {
	switchID, actionID string
	execType           model.ExecutionType
	completed          bool
	errMsg             *string
	exitCode           *int64
}

type fakeStore struct {
	executions map[string]*fakeExecution
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{executions: make(map[string]*fakeExecution)}
}

func (s *fakeStore) BeginExecution(ctx context.Context, switchID, actionID string, execType model.ExecutionType, startedAt time.Time) (string, error) {
	s.nextID++
	id := string(rune('a' + s.nextID))
	s.executions[id] = &fakeExecution{switchID: switchID, actionID: actionID, execType: execType}
	return id, nil
}

func (s *fakeStore) FinishExecution(ctx context.Context, execID string, completedAt time.Time, exitCode *int64, stdout, stderr, errMsg *string) error {
	e, ok := s.executions[execID]
	if !ok {
		return errors.New("unknown execution id")
	}
	e.completed = true
	e.errMsg = errMsg
	e.exitCode = exitCode
	return nil
}

type recordingDriver struct {
	result Result
	err    error
}

func (d *recordingDriver) Run(ctx context.Context, raw json.RawMessage, ec ExecContext) (Result, error) {
	return d.result, d.err
}

// TestRunSequenceContinuesOnError exercises spec.md §4.2's continue-on-error
// contract: a failing action in the middle of a sequence must not prevent
// later actions from running.
func TestRunSequenceContinuesOnError(t *testing.T) {
	st := newFakeStore()
	drivers := map[model.ActionType]Driver{
		model.ActionWebhook: &recordingDriver{err: errors.New("first action fails")},
		model.ActionEmail:   &recordingDriver{result: Result{ExitCode: 0}},
	}
	runner := NewRunner(st, drivers, nil)

	actions := []model.Action{
		{ID: "a1", ActionType: model.ActionWebhook},
		{ID: "a2", ActionType: model.ActionEmail},
	}

	failed := runner.RunSequence(context.Background(), "sw1", actions, model.ExecutionFinal)
	if failed != 1 {
		t.Fatalf("expected exactly 1 failure, got %d", failed)
	}
	if len(st.executions) != 2 {
		t.Fatalf("expected both actions to have execution records, got %d", len(st.executions))
	}

	var sawFailed, sawCompleted bool
	for _, e := range st.executions {
		if !e.completed {
			t.Fatalf("expected every execution to be finished")
		}
		if e.errMsg != nil {
			sawFailed = true
		} else {
			sawCompleted = true
		}
	}
	if !sawFailed || !sawCompleted {
		t.Fatalf("expected one failed and one completed execution, sawFailed=%v sawCompleted=%v", sawFailed, sawCompleted)
	}
}

func TestRunOneUnknownActionTypeRecordsError(t *testing.T) {
	st := newFakeStore()
	runner := NewRunner(st, map[model.ActionType]Driver{}, nil)

	failed := runner.RunSequence(context.Background(), "sw1", []model.Action{
		{ID: "a1", ActionType: model.ActionType("carrier-pigeon")},
	}, model.ExecutionWarning)

	if failed != 1 {
		t.Fatalf("expected 1 failure for unregistered driver, got %d", failed)
	}
}
