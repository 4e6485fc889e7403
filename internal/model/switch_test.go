package model

import (
	"testing"
	"time"
)

func TestSwitchIsExpiredInclusiveBoundary(t *testing.T) {
	created := time.Unix(0, 0)
	sw := Switch{LastCheckin: created, TimeoutSeconds: 60}

	if sw.IsExpired(created.Add(59 * time.Second)) {
		t.Fatalf("age=59 must not be expired for timeout=60")
	}
	if !sw.IsExpired(created.Add(60 * time.Second)) {
		t.Fatalf("age=deadline (60) must trigger expiry inclusively")
	}
	if !sw.IsExpired(created.Add(61 * time.Second)) {
		t.Fatalf("age>deadline must be expired")
	}
}

func TestNewSwitchGeneratesDistinctTokens(t *testing.T) {
	now := time.Now()
	req := CreateSwitchRequest{Name: "svc", TimeoutSeconds: 60, TriggerIntervalSeconds: 60}

	a, err := NewSwitch(req, now)
	if err != nil {
		t.Fatalf("NewSwitch: %v", err)
	}
	b, err := NewSwitch(req, now)
	if err != nil {
		t.Fatalf("NewSwitch: %v", err)
	}

	if a.APIToken == b.APIToken {
		t.Fatalf("expected distinct api tokens across switches")
	}
	if len(a.APIToken) != 64 {
		t.Fatalf("expected 64 hex chars (256 bits), got %d", len(a.APIToken))
	}
	if a.Status != StatusActive {
		t.Fatalf("expected initial status active, got %s", a.Status)
	}
}

func TestCreateSwitchRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  CreateSwitchRequest
		ok   bool
	}{
		{"valid", CreateSwitchRequest{Name: "x", TimeoutSeconds: 1, TriggerIntervalSeconds: 1}, true},
		{"missing name", CreateSwitchRequest{TimeoutSeconds: 1, TriggerIntervalSeconds: 1}, false},
		{"zero timeout", CreateSwitchRequest{Name: "x", TimeoutSeconds: 0, TriggerIntervalSeconds: 1}, false},
		{"negative trigger_count_max", CreateSwitchRequest{Name: "x", TimeoutSeconds: 1, TriggerCountMax: -1, TriggerIntervalSeconds: 1}, false},
		{"zero trigger_interval", CreateSwitchRequest{Name: "x", TimeoutSeconds: 1, TriggerIntervalSeconds: 0}, false},
	}

	for _, c := range cases {
		err := c.req.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: expected valid, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error, got nil", c.name)
		}
	}
}
