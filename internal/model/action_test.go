package model

import "testing"

func TestDeriveStatus(t *testing.T) {
	zero := int64(0)
	nonZero := int64(1)

	cases := []struct {
		name    string
		errMsg  string
		exit    *int64
		want    ExecutionStatus
	}{
		{"error message set", "boom", nil, ExecutionFailed},
		{"nonzero exit code", "", &nonZero, ExecutionFailed},
		{"zero exit code, no error", "", &zero, ExecutionCompleted},
		{"nil exit code, no error", "", nil, ExecutionCompleted},
	}

	for _, c := range cases {
		got := DeriveStatus(c.errMsg, c.exit)
		if got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

func TestActionTypeIsValid(t *testing.T) {
	for _, valid := range []ActionType{ActionEmail, ActionWebhook, ActionScript} {
		if !valid.IsValid() {
			t.Errorf("expected %s to be valid", valid)
		}
	}
	if ActionType("ssh").IsValid() {
		t.Fatal("expected unknown action type to be invalid")
	}
}
