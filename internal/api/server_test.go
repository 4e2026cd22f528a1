package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/worldhistory/internal/engine"
	"github.com/talgya/worldhistory/internal/persistence"
	"github.com/talgya/worldhistory/internal/world"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatusWithoutRun(t *testing.T) {
	s := &Server{}
	h := s.Handler()
	for _, path := range []string{"/api/v1/status", "/api/v1/stats/history"} {
		if rec := get(t, h, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", path, rec.Code)
		}
	}
}

func TestStatusWithRun(t *testing.T) {
	s := &Server{}
	b := engine.NewBoundary(2, 10)
	s.Publish(b)

	rec := get(t, s.Handler(), "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		RunID    string  `json:"run_id"`
		Progress float64 `json:"progress"`
		Total    uint32  `json:"steps_total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.RunID != b.RunID().String() || body.Progress != 0.2 || body.Total != 10 {
		t.Errorf("status body = %+v", body)
	}

	rec = get(t, s.Handler(), "/api/v1/stats/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("history = %d", rec.Code)
	}
	var history struct {
		Capacity int `json:"capacity"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	if history.Capacity != engine.RecordLength {
		t.Errorf("history capacity = %d, want %d", history.Capacity, engine.RecordLength)
	}

	s.Publish(nil)
	if rec := get(t, s.Handler(), "/api/v1/status"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status after clear = %d, want 503", rec.Code)
	}
}

func TestRunsArchive(t *testing.T) {
	if rec := get(t, (&Server{}).Handler(), "/api/v1/runs"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("runs without db = %d, want 503", rec.Code)
	}

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	b := engine.NewBoundary(0, 10)
	snap, _ := b.Snapshot()
	snap.TickSeconds = []float64{0.01}
	snap.Entities, snap.People, snap.Places = []int{1}, []int{1}, []int{0}
	cfg := world.DefaultSimulationConfig(1)
	if err := db.SaveRun(&cfg, snap); err != nil {
		t.Fatal(err)
	}

	h := (&Server{DB: db}).Handler()
	rec := get(t, h, "/api/v1/runs?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("runs = %d: %s", rec.Code, rec.Body)
	}
	var runs []persistence.Run
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != b.RunID().String() {
		t.Errorf("runs = %+v", runs)
	}

	if rec := get(t, h, "/api/v1/runs/"+b.RunID().String()+"/samples"); rec.Code != http.StatusOK {
		t.Errorf("samples = %d", rec.Code)
	}
	if rec := get(t, h, "/api/v1/runs/missing/samples"); rec.Code != http.StatusNotFound {
		t.Errorf("missing samples = %d, want 404", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := (&Server{CORSOrigins: []string{"https://history.example"}}).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://history.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://history.example" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests rejected")
	}
	if rl.Allow("a") {
		t.Error("third request allowed")
	}
	if !rl.Allow("b") {
		t.Error("other client rejected")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("request after window rejected")
	}
}
