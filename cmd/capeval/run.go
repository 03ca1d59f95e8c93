package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"capeval/internal/config"
	"capeval/pkg/results"
	"capeval/pkg/runner"
	"capeval/pkg/task"
	"capeval/pkg/verify"
)

// handleRun implements `capeval run`.
func handleRun(args []string) error {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading config: %v\n", err)
	}

	mode := stringFlag(args, "mode", "manual")
	tasksDir := stringFlag(args, "tasks", cfg.TasksDir)
	out := stringFlag(args, "out", cfg.Out)
	inputs := stringFlag(args, "inputs", "")
	retries, err := intFlag(args, "retries", cfg.Retries)
	if err != nil {
		return err
	}
	if retries < 1 {
		return fmt.Errorf("--retries must be >= 1, got %d", retries)
	}

	catalog, err := task.LoadCatalog(tasksDir)
	if err != nil {
		return err
	}
	if lint := task.Lint(catalog); !lint.Valid() {
		for _, e := range lint.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		return fmt.Errorf("catalog validation failed: %d error(s)", len(lint.Errors))
	}

	var source runner.OutputSource
	switch mode {
	case "manual":
		fmt.Fprintln(os.Stderr, "Manual mode: paste model outputs exactly as returned.")
		fmt.Fprintln(os.Stderr, "Tip: if your model adds code fences, remove them before pasting.")
		ms := runner.StdinManualSource()
		ms.MaxAttempts = retries
		source = ms
	case "from-file":
		if inputs == "" {
			return fmt.Errorf("--inputs is required for from-file mode")
		}
		src, err := runner.LoadRecordedOutputs(inputs)
		if err != nil {
			return err
		}
		source = src
	default:
		return fmt.Errorf("unknown mode %q (expected manual or from-file)", mode)
	}

	csvRecorder, err := results.NewCSVRecorder(out)
	if err != nil {
		return err
	}
	recorder := results.Recorder(csvRecorder)

	if cfg.History.Persist {
		store, err := results.NewBoltStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		runRec, err := store.BeginRun(results.RunInfo{
			Mode:    mode,
			Retries: retries,
			Tasks:   len(catalog),
		})
		if err != nil {
			return err
		}
		recorder = results.MultiRecorder(csvRecorder, runRec)
	}
	defer recorder.Close()

	// Operator feedback goes through the synchronous Progress callback;
	// a bus is only attached where something reads it (demo's event trace).
	r := &runner.Runner{
		Source:      source,
		Recorder:    recorder,
		MaxAttempts: retries,
		Progress:    progressPrinter(cfg.Color),
	}

	run, err := r.Run(context.Background(), catalog)
	rows := 0
	for _, res := range run.Results {
		rows += len(res.Attempts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Wrote %d rows to %s before aborting\n", rows, out)
		return err
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d/%d tasks passed (%d exhausted). Wrote %d rows to %s\n",
		run.Passed, len(catalog), run.Exhausted, rows, out)
	return nil
}

// progressPrinter returns a per-attempt status printer for stderr, so
// interactive operators see each verdict before the next attempt prompt.
func progressPrinter(useColor bool) func(a results.Attempt, v verify.Verdict) {
	if !useColor {
		color.NoColor = true
	}
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)

	return func(a results.Attempt, v verify.Verdict) {
		if v.Passed {
			pass.Fprintf(os.Stderr, "  %s attempt %d: PASS\n", a.TaskID, a.Attempt)
			return
		}
		if v.Detail != "" {
			fail.Fprintf(os.Stderr, "  %s attempt %d: FAIL (%s) - %s\n", a.TaskID, a.Attempt, v.Mode, v.Detail)
		} else {
			fail.Fprintf(os.Stderr, "  %s attempt %d: FAIL (%s)\n", a.TaskID, a.Attempt, v.Mode)
		}
	}
}
