package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nullpulse/sentinel/internal/model"
)

type fakeStore struct {
	switches map[string]model.Switch
}

func newFakeStore() *fakeStore {
	return &fakeStore{switches: map[string]model.Switch{}}
}

func (f *fakeStore) CreateSwitch(ctx context.Context, s model.Switch) error {
	f.switches[s.ID] = s
	return nil
}

func (f *fakeStore) DeleteSwitch(ctx context.Context, id string) error {
	delete(f.switches, id)
	return nil
}

func (f *fakeStore) GetSwitch(ctx context.Context, id string) (model.Switch, error) {
	sw, ok := f.switches[id]
	if !ok {
		return model.Switch{}, model.ErrNotFound
	}
	return sw, nil
}

func (f *fakeStore) ListSwitches(ctx context.Context) ([]model.Switch, error) {
	var out []model.Switch
	for _, sw := range f.switches {
		out = append(out, sw)
	}
	return out, nil
}

func (f *fakeStore) UpdateLastCheckin(ctx context.Context, id string, ts time.Time) error {
	sw := f.switches[id]
	sw.LastCheckin = ts
	f.switches[id] = sw
	return nil
}

func (f *fakeStore) CreateWarningStage(ctx context.Context, s model.WarningStage) error {
	return nil
}

func (f *fakeStore) ListWarningStages(ctx context.Context, switchID string) ([]model.WarningStage, error) {
	return nil, nil
}

func (f *fakeStore) CreateAction(ctx context.Context, a model.Action) error {
	return nil
}

func (f *fakeStore) ListActions(ctx context.Context, switchID string, isWarning bool) ([]model.Action, error) {
	return nil, nil
}

func newCheckinRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCheckinHandler(store)
	r.POST("/checkin/:id", h.Checkin)
	return r
}

func doCheckin(r *gin.Engine, id, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkin/"+id, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckinSuccess(t *testing.T) {
	store := newFakeStore()
	store.switches["sw1"] = model.Switch{ID: "sw1", APIToken: "correct-token", TimeoutSeconds: 60, LastCheckin: time.Unix(0, 0)}

	r := newCheckinRouter(store)
	w := doCheckin(r, "sw1", "Bearer correct-token")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// TestEnumerationResistance exercises spec.md §4.4/§8: an unknown switch ID
// and a known switch with the wrong token must be indistinguishable to the
// caller — same status, same body.
func TestEnumerationResistance(t *testing.T) {
	store := newFakeStore()
	store.switches["sw1"] = model.Switch{ID: "sw1", APIToken: "correct-token", TimeoutSeconds: 60, LastCheckin: time.Unix(0, 0)}

	r := newCheckinRouter(store)

	unknown := doCheckin(r, "does-not-exist", "Bearer whatever-token")
	wrongToken := doCheckin(r, "sw1", "Bearer wrong-token")

	if unknown.Code != wrongToken.Code {
		t.Fatalf("status codes differ: unknown=%d wrongToken=%d", unknown.Code, wrongToken.Code)
	}
	if unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", unknown.Code)
	}
	if unknown.Body.String() != wrongToken.Body.String() {
		t.Fatalf("bodies differ:\nunknown:     %s\nwrong token: %s", unknown.Body.String(), wrongToken.Body.String())
	}
}

func TestCheckinMissingAuthHeader(t *testing.T) {
	store := newFakeStore()
	store.switches["sw1"] = model.Switch{ID: "sw1", APIToken: "correct-token", TimeoutSeconds: 60}

	r := newCheckinRouter(store)
	w := doCheckin(r, "sw1", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing auth header, got %d", w.Code)
	}
}
