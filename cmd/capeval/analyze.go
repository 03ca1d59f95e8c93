package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"capeval/internal/config"
	"capeval/pkg/results"
	"capeval/pkg/task"
)

// handleAnalyze implements `capeval analyze`.
func handleAnalyze(args []string) error {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading config: %v\n", err)
	}

	in := stringFlag(args, "in", cfg.Out)
	allAttempts := boolFlag(args, "all-attempts", cfg.Analyzer.AllAttempts)
	tasksDir := stringFlag(args, "tasks", "")

	rows, issues, err := results.ReadCSV(in)
	if err != nil {
		return err
	}

	opts := results.Options{AllAttempts: allAttempts}
	if tasksDir != "" {
		catalog, err := task.LoadCatalog(tasksDir)
		if err != nil {
			return err
		}
		opts.Catalog = catalog
	}

	summary := results.Analyze(rows, opts)

	fmt.Printf("Results: %s (%d rows)\n", in, len(rows))
	if len(issues) > 0 {
		fmt.Printf("\nData-quality issues (%d rows skipped):\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  %s\n", issue)
		}
	}

	fmt.Printf("\nFinal pass rate: %d/%d", summary.TasksPassed, summary.TasksWithData)
	if summary.TasksWithData > 0 {
		fmt.Printf(" = %.1f%%", summary.PassRate()*100)
	}
	fmt.Println()

	if summary.ByKind != nil {
		kinds := make([]task.Kind, 0, len(summary.ByKind))
		for k := range summary.ByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			s := summary.ByKind[k]
			name := string(k)
			if name == "" {
				name = "(unknown)"
			}
			rate := 0.0
			if s.Tasks > 0 {
				rate = float64(s.Passed) / float64(s.Tasks) * 100
			}
			fmt.Printf("  %-10s: %d/%d = %.1f%%\n", name, s.Passed, s.Tasks, rate)
		}
	}

	if len(summary.NoData) > 0 {
		fmt.Printf("\nNo data (excluded from rates): %s\n", strings.Join(summary.NoData, ", "))
	}

	policy := "final outcomes only"
	if allAttempts {
		policy = "all failed attempts"
	}
	fmt.Printf("\nFailure modes (%s):\n", policy)
	if len(summary.FailureModes) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	type modeCount struct {
		mode  string
		count int
	}
	counts := make([]modeCount, 0, len(summary.FailureModes))
	for m, c := range summary.FailureModes {
		counts = append(counts, modeCount{m, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].mode < counts[j].mode
	})
	for _, mc := range counts {
		fmt.Printf("  %-22s %d\n", mc.mode, mc.count)
	}

	return nil
}
