package results

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "history", "runs.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecordsRun(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.BeginRun(RunInfo{Mode: "from-file", Retries: 3, Tasks: 2})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	attempts := []Attempt{
		sampleAttempt("B1", 1, "41", false, "WRONG_ANSWER"),
		sampleAttempt("B1", 2, "42", true, ""),
		sampleAttempt("C1", 1, "{}", false, "MISSING_KEYS"),
	}
	for _, a := range attempts {
		if err := rec.Record(a); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	info := runs[0]
	if info.ID == "" {
		t.Error("run ID not assigned")
	}
	if info.StartedAt.IsZero() {
		t.Error("StartedAt not assigned")
	}
	if info.Mode != "from-file" || info.Retries != 3 || info.Tasks != 2 {
		t.Errorf("run info = %+v", info)
	}

	got, err := store.Attempts(info.ID)
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(got) != len(attempts) {
		t.Fatalf("got %d attempts, want %d", len(got), len(attempts))
	}
	for i, want := range attempts {
		if got[i].TaskID != want.TaskID || got[i].Attempt != want.Attempt ||
			got[i].Passed != want.Passed || got[i].FailureMode != want.FailureMode {
			t.Errorf("attempt %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestBoltStoreIsolatesRuns(t *testing.T) {
	store := openTestStore(t)

	first, err := store.BeginRun(RunInfo{ID: "run-a", StartedAt: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	second, err := store.BeginRun(RunInfo{ID: "run-b", StartedAt: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	if err := first.Record(sampleAttempt("B1", 1, "42", true, "")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := second.Record(sampleAttempt("C1", 1, "x", false, "INVALID_JSON")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := second.Record(sampleAttempt("C1", 2, "y", false, "INVALID_JSON")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	a, err := store.Attempts("run-a")
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	b, err := store.Attempts("run-b")
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(a) != 1 || len(b) != 2 {
		t.Errorf("run-a has %d attempts, run-b has %d; want 1 and 2", len(a), len(b))
	}

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		t.Errorf("runs = %+v, want run-a then run-b", runs)
	}
}

func TestBoltStoreAttemptsUnknownRun(t *testing.T) {
	store := openTestStore(t)
	attempts, err := store.Attempts("never-started")
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("got %d attempts for unknown run, want 0", len(attempts))
	}
}
