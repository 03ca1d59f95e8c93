package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"capeval/pkg/events"
	"capeval/pkg/results"
	"capeval/pkg/runner"
	"capeval/pkg/task"
)

// handleDemo runs a small built-in catalog against canned outputs through
// the real validator, runner, and recorder, then analyzes the CSV it wrote.
func handleDemo() error {
	catalog := task.Catalog{
		{
			ID:     "B1",
			Kind:   task.KindBaseline,
			Prompt: "What is 6 * 7? Reply with just the number.",
			Spec:   task.Spec{ExpectedAnswer: "42"},
		},
		{
			ID:     "C1",
			Kind:   task.KindConstraint,
			Prompt: "Reply with a JSON object with exactly one key \"color\": red, green, or blue.",
			Spec: task.Spec{Check: &task.CheckSpec{
				Kind: "json_enum", Key: "color", Allowed: []string{"red", "green", "blue"},
			}},
		},
		{
			ID:     "C2",
			Kind:   task.KindConstraint,
			Prompt: "Reply with JSON {\"text\": <string>, \"count\": <chars in text>}.",
			Spec: task.Spec{Check: &task.CheckSpec{
				Kind: "json_crossfield_charcount", TextKey: "text", CountKey: "count",
			}},
		},
	}

	// Canned generator outputs: B1 recovers on the second attempt, C1
	// recovers after an enum violation, C2 never produces valid JSON.
	canned := map[string][]string{
		"B1": {"41", "42"},
		"C1": {`{"color": "purple"}`, `{"color": "red"}`},
		"C2": {"the count is 5", `{"text": "hello"`, `{"text":`},
	}
	source := runner.SourceFunc(func(_ context.Context, t task.Task, attempt int) (string, error) {
		outputs := canned[t.ID]
		if attempt > len(outputs) {
			return "", fmt.Errorf("task %s attempt %d: %w", t.ID, attempt, runner.ErrNoRecordedOutput)
		}
		return outputs[attempt-1], nil
	})

	out := filepath.Join(os.TempDir(), "capeval-demo-results.csv")
	recorder, err := results.NewCSVRecorder(out)
	if err != nil {
		return err
	}

	bus := events.NewMemoryBus()
	start := time.Now()

	fmt.Fprintf(os.Stderr, "=== Demo: 3 tasks, 3 attempts each ===\n")
	r := &runner.Runner{
		Source:      source,
		Recorder:    recorder,
		MaxAttempts: 3,
		Bus:         bus,
		Progress:    progressPrinter(true),
	}
	run, err := r.Run(context.Background(), catalog)
	if cerr := recorder.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n=== Event trace ===\n")
	for _, e := range bus.History(start) {
		if e.TaskID != "" {
			fmt.Fprintf(os.Stderr, "  %-16s task=%s attempt=%d\n", e.Type, e.TaskID, e.Attempt)
		} else {
			fmt.Fprintf(os.Stderr, "  %-16s %v\n", e.Type, e.Data)
		}
	}

	rows, _, err := results.ReadCSV(out)
	if err != nil {
		return err
	}
	summary := results.Analyze(rows, results.Options{Catalog: catalog})

	fmt.Fprintf(os.Stderr, "\n=== Summary ===\n")
	fmt.Fprintf(os.Stderr, "Passed %d/%d tasks (%d exhausted), pass rate %.1f%%\n",
		run.Passed, len(catalog), run.Exhausted, summary.PassRate()*100)
	for mode, count := range summary.FailureModes {
		fmt.Fprintf(os.Stderr, "  %-22s %d\n", mode, count)
	}
	fmt.Fprintf(os.Stderr, "Results CSV: %s\n", out)
	return nil
}
