package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"capeval/pkg/task"
)

// ErrNoRecordedOutput marks a (task, attempt) pair absent from a recorded
// inputs file. This is a configuration error: the runner must abort rather
// than score the gap as a failed attempt, which would corrupt the
// failure-mode statistics.
var ErrNoRecordedOutput = errors.New("no recorded output")

// attemptKey identifies one recorded output.
type attemptKey struct {
	TaskID  string
	Attempt int
}

// RecordedSource serves pre-recorded outputs from a JSONL file, one object
// per line: {"task_id": "...", "attempt": N, "output": "..."}.
type RecordedSource struct {
	outputs map[attemptKey]string
}

// LoadRecordedOutputs reads a JSONL inputs file into a RecordedSource.
// Blank lines are skipped; a malformed line is a configuration error.
func LoadRecordedOutputs(path string) (*RecordedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inputs file: %w", err)
	}
	defer f.Close()

	outputs := make(map[attemptKey]string)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; scanner.Scan(); line++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec struct {
			TaskID  string `json:"task_id"`
			Attempt int    `json:"attempt"`
			Output  string `json:"output"`
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parse inputs file %s line %d: %w", path, line, err)
		}
		if rec.TaskID == "" || rec.Attempt < 1 {
			return nil, fmt.Errorf("inputs file %s line %d: task_id and attempt >= 1 required", path, line)
		}
		outputs[attemptKey{rec.TaskID, rec.Attempt}] = rec.Output
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inputs file %s: %w", path, err)
	}

	return &RecordedSource{outputs: outputs}, nil
}

func (s *RecordedSource) Output(_ context.Context, t task.Task, attempt int) (string, error) {
	out, ok := s.outputs[attemptKey{t.ID, attempt}]
	if !ok {
		return "", fmt.Errorf("task %s attempt %d: %w", t.ID, attempt, ErrNoRecordedOutput)
	}
	return out, nil
}

// Len returns the number of recorded outputs.
func (s *RecordedSource) Len() int {
	return len(s.outputs)
}
