package model

import "testing"

func TestWarningStageValidateAgainstTimeout(t *testing.T) {
	cases := []struct {
		name    string
		seconds int64
		timeout int64
		ok      bool
	}{
		{"valid", 20, 60, true},
		{"zero", 0, 60, false},
		{"negative", -5, 60, false},
		{"equal to timeout", 60, 60, false},
		{"greater than timeout", 61, 60, false},
	}

	for _, c := range cases {
		s := WarningStage{SecondsBeforeDeadline: c.seconds}
		err := s.ValidateAgainstTimeout(c.timeout)
		if c.ok && err != nil {
			t.Errorf("%s: expected valid, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error, got nil", c.name)
		}
	}
}

func TestWarningThreshold(t *testing.T) {
	s := WarningStage{SecondsBeforeDeadline: 20}
	if got := s.WarningThreshold(60); got != 40 {
		t.Fatalf("expected threshold 40, got %d", got)
	}
}
