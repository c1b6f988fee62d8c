package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ctxgov/internal/logging"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
	store, err := Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel})

	store, err := Open(filepath.Join(dir, "nested"), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	// Reopen against the same directory to exercise the existing-file path.
	again, err := Open(filepath.Join(dir, "nested"), logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again.Close()
}

func TestSaveAndLoadPlan(t *testing.T) {
	store := testStore(t)

	payload := []byte(`{"plan_id":"abc12345","statistics":{"output_tokens":700}}`)
	rec := &PlanRecord{
		PlanID:       "abc12345",
		CreatedAt:    time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Intent:       "debugging",
		Budget:       8000,
		OutputTokens: 700,
		Fingerprint:  "deadbeefdeadbeef",
		Payload:      payload,
	}
	if err := store.SavePlan(rec); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	loaded, err := store.LoadPlan("abc12345")
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if string(loaded.Payload) != string(payload) {
		t.Errorf("payload round-trip mismatch: %s", loaded.Payload)
	}
	if loaded.Intent != "debugging" || loaded.Budget != 8000 || loaded.OutputTokens != 700 {
		t.Errorf("fields = %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created at = %v, want %v", loaded.CreatedAt, rec.CreatedAt)
	}
}

func TestSavePlanReplacesExisting(t *testing.T) {
	store := testStore(t)

	first := &PlanRecord{PlanID: "p1", CreatedAt: time.Now().UTC(), Intent: "generic", Payload: []byte(`{"v":1}`)}
	second := &PlanRecord{PlanID: "p1", CreatedAt: time.Now().UTC(), Intent: "review", Payload: []byte(`{"v":2}`)}
	if err := store.SavePlan(first); err != nil {
		t.Fatal(err)
	}
	if err := store.SavePlan(second); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadPlan("p1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Intent != "review" || string(loaded.Payload) != `{"v":2}` {
		t.Errorf("replace did not take: %+v", loaded)
	}
}

func TestLoadPlanNotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.LoadPlan("missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not-found error", err)
	}
}

func TestListPlans(t *testing.T) {
	store := testStore(t)

	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := &PlanRecord{
			PlanID:    string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Intent:    "generic",
			Payload:   []byte("{}"),
		}
		if err := store.SavePlan(rec); err != nil {
			t.Fatal(err)
		}
	}

	plans, err := store.ListPlans(2)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("got %d plans, want 2", len(plans))
	}
	if plans[0].PlanID != "c" || plans[1].PlanID != "b" {
		t.Errorf("order = %s, %s; want newest first", plans[0].PlanID, plans[1].PlanID)
	}
}

func TestSaveAndLoadSessions(t *testing.T) {
	store := testStore(t)

	m := &SessionMetrics{
		SessionID:            "session_20260824_120000_000001",
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		TotalTokens:          900,
		Tier1Tokens:          400,
		Tier2Tokens:          300,
		Tier3Tokens:          200,
		HighRelevanceTokens:  500,
		LowRelevanceTokens:   100,
		QualityPreserved:     true,
		EstimatedCostUSD:     0.0027,
		SavingsVsBaselineUSD: 0.0009,
		ExperimentID:         "exp-1",
		Variant:              "optimized",
		AssignmentKey:        "k1",
		Intent:               "debugging",
		Budget:               8000,
		BaselineTokens:       1200,
		PostFilterTokens:     1000,
		OutputTokens:         900,
		OverallTokensSaved:   300,
		OverallPct:           25.0,
		WithinBudget:         true,
	}
	if err := store.SaveSession(m); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	sessions, err := store.LoadSessions(7)
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	got := sessions[0]
	if got.SessionID != m.SessionID || got.TotalTokens != 900 || !got.QualityPreserved {
		t.Errorf("session = %+v", got)
	}
	if got.ExperimentID != "exp-1" || got.Variant != "optimized" {
		t.Errorf("experiment fields = %q/%q", got.ExperimentID, got.Variant)
	}
	if got.OverallPct != 25.0 || got.OverallTokensSaved != 300 {
		t.Errorf("savings fields = %v/%d", got.OverallPct, got.OverallTokensSaved)
	}
}

func TestLoadSessionsCutoff(t *testing.T) {
	store := testStore(t)

	old := &SessionMetrics{
		SessionID: "old",
		Timestamp: time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339),
	}
	recent := &SessionMetrics{
		SessionID: "recent",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.SaveSession(old); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSession(recent); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.LoadSessions(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "recent" {
		t.Errorf("sessions = %+v, want only the recent one", sessions)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat(`{"key":"value"}`, 200))
	compressed, err := compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("compressed %d bytes to %d, expected reduction on repetitive input",
			len(data), len(compressed))
	}
	restored, err := decompress(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != string(data) {
		t.Error("round trip mismatch")
	}
}
