package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleAttempt(taskID string, attempt int, output string, passed bool, mode string) Attempt {
	return Attempt{
		TaskID:      taskID,
		Attempt:     attempt,
		Output:      output,
		Passed:      passed,
		FailureMode: mode,
		Timestamp:   time.Date(2026, 8, 26, 12, 0, attempt, 0, time.UTC),
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "pilot.csv")
	rec, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatalf("NewCSVRecorder: %v", err)
	}

	written := []Attempt{
		sampleAttempt("B1", 1, "41", false, "WRONG_ANSWER"),
		sampleAttempt("B1", 2, "42", true, ""),
		sampleAttempt("C1", 1, `{"color": "red", "x": 1}`, false, "EXTRA_KEYS"),
		sampleAttempt("C2", 1, "line one\nline two", false, "INVALID_JSON"),
	}
	for _, a := range written {
		if err := rec.Record(a); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, issues, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(rows) != len(written) {
		t.Fatalf("got %d rows, want %d", len(rows), len(written))
	}
	for i, want := range written {
		got := rows[i]
		if got.TaskID != want.TaskID || got.Attempt != want.Attempt ||
			got.Output != want.Output || got.Passed != want.Passed ||
			got.FailureMode != want.FailureMode {
			t.Errorf("row %d = %+v, want %+v", i, got, want)
		}
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("row %d timestamp = %v, want %v", i, got.Timestamp, want.Timestamp)
		}
	}
}

func TestCSVFlushPerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.csv")
	rec, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatalf("NewCSVRecorder: %v", err)
	}
	defer rec.Close()

	if err := rec.Record(sampleAttempt("B1", 1, "42", true, "")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// The row must be readable before Close is ever called.
	rows, _, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 1 || rows[0].TaskID != "B1" {
		t.Fatalf("rows = %+v, want the one flushed row", rows)
	}
}

func TestReadCSVBadRowsBecomeIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.csv")
	data := strings.Join([]string{
		"task_id,attempt,output,passed,failure_mode,timestamp",
		"B1,1,42,true,,2026-08-26T12:00:00Z",
		"B2,notanumber,x,false,WRONG_ANSWER,2026-08-26T12:00:01Z",
		"B3,1,x,maybe,WRONG_ANSWER,2026-08-26T12:00:02Z",
		"B4,1,x,false,WRONG_ANSWER,yesterday",
		"B5,1,x",
		"B6,1,x,false,WRONG_ANSWER,2026-08-26T12:00:03Z",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, issues, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d good rows, want 2: %+v", len(rows), rows)
	}
	if rows[0].TaskID != "B1" || rows[1].TaskID != "B6" {
		t.Errorf("good rows = %s, %s", rows[0].TaskID, rows[1].TaskID)
	}
	if len(issues) != 4 {
		t.Fatalf("got %d issues, want 4: %v", len(issues), issues)
	}
	wantLines := []int{3, 4, 5, 6}
	for i, issue := range issues {
		if issue.Line != wantLines[i] {
			t.Errorf("issue %d on line %d, want %d (%s)", i, issue.Line, wantLines[i], issue.Reason)
		}
	}
}

func TestReadCSVWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.csv")
	if err := os.WriteFile(path, []byte("task,try,out\nB1,1,42\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadCSV(path); err == nil {
		t.Fatal("expected header error")
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	if _, _, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMultiRecorderFansOut(t *testing.T) {
	dir := t.TempDir()
	a, err := NewCSVRecorder(filepath.Join(dir, "a.csv"))
	if err != nil {
		t.Fatalf("NewCSVRecorder: %v", err)
	}
	b, err := NewCSVRecorder(filepath.Join(dir, "b.csv"))
	if err != nil {
		t.Fatalf("NewCSVRecorder: %v", err)
	}

	multi := MultiRecorder(a, b)
	if err := multi.Record(sampleAttempt("B1", 1, "42", true, "")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"a.csv", "b.csv"} {
		rows, _, err := ReadCSV(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("ReadCSV %s: %v", name, err)
		}
		if len(rows) != 1 {
			t.Errorf("%s has %d rows, want 1", name, len(rows))
		}
	}
}
