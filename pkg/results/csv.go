package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// csvColumns is the fixed result-record column set.
var csvColumns = []string{"task_id", "attempt", "output", "passed", "failure_mode", "timestamp"}

// CSVRecorder appends attempt records to a CSV file, one row per attempt.
// Every row is flushed as soon as it is written so a crash after N attempts
// loses none of the first N.
type CSVRecorder struct {
	f *os.File
	w *csv.Writer
}

// NewCSVRecorder creates the output file (and any missing parent
// directories) and writes the header row.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create results file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush header: %w", err)
	}

	return &CSVRecorder{f: f, w: w}, nil
}

func (r *CSVRecorder) Record(a Attempt) error {
	row := []string{
		a.TaskID,
		strconv.Itoa(a.Attempt),
		a.Output,
		strconv.FormatBool(a.Passed),
		a.FailureMode,
		a.Timestamp.Format(time.RFC3339),
	}
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("write row for task %s attempt %d: %w", a.TaskID, a.Attempt, err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush row for task %s attempt %d: %w", a.TaskID, a.Attempt, err)
	}
	return nil
}

func (r *CSVRecorder) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// RowIssue flags a persisted row that could not be decoded. Bad rows are
// data-quality findings for the analyzer to report, never reasons to abort.
type RowIssue struct {
	Line   int
	Reason string
}

func (i RowIssue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Reason)
}

// ReadCSV reads attempt records back from a results file. Rows with a wrong
// column count, an unparsable attempt number, an unparsable passed flag, or
// an unparsable timestamp are collected as issues and skipped.
func ReadCSV(path string) ([]Attempt, []RowIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvColumns) {
		return nil, nil, fmt.Errorf("unexpected header %v (want %v)", header, csvColumns)
	}
	for i, col := range csvColumns {
		if header[i] != col {
			return nil, nil, fmt.Errorf("unexpected header %v (want %v)", header, csvColumns)
		}
	}

	var attempts []Attempt
	var issues []RowIssue
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				issues = append(issues, RowIssue{Line: line, Reason: pe.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("read results file: %w", err)
		}
		if len(row) != len(csvColumns) {
			issues = append(issues, RowIssue{Line: line, Reason: fmt.Sprintf("expected %d columns, got %d", len(csvColumns), len(row))})
			continue
		}
		n, err := strconv.Atoi(row[1])
		if err != nil || n < 1 {
			issues = append(issues, RowIssue{Line: line, Reason: fmt.Sprintf("bad attempt number %q", row[1])})
			continue
		}
		passed, err := strconv.ParseBool(row[3])
		if err != nil {
			issues = append(issues, RowIssue{Line: line, Reason: fmt.Sprintf("bad passed flag %q", row[3])})
			continue
		}
		ts, err := time.Parse(time.RFC3339, row[5])
		if err != nil {
			issues = append(issues, RowIssue{Line: line, Reason: fmt.Sprintf("bad timestamp %q", row[5])})
			continue
		}
		attempts = append(attempts, Attempt{
			TaskID:      row[0],
			Attempt:     n,
			Output:      row[2],
			Passed:      passed,
			FailureMode: row[4],
			Timestamp:   ts,
		})
	}

	return attempts, issues, nil
}
