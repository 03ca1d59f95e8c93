package main

import (
	"fmt"
	"os"

	"capeval/internal/config"
	"capeval/pkg/task"
)

// handleValidate implements `capeval validate`: catalog lint without a run.
func handleValidate(args []string) error {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading config: %v\n", err)
	}

	tasksDir := stringFlag(args, "tasks", cfg.TasksDir)

	catalog, err := task.LoadCatalog(tasksDir)
	if err != nil {
		return err
	}

	lint := task.Lint(catalog)
	if lint.Valid() {
		baseline, constraint := 0, 0
		for _, t := range catalog {
			switch t.Kind {
			case task.KindBaseline:
				baseline++
			case task.KindConstraint:
				constraint++
			}
		}
		fmt.Printf("OK: %d tasks (%d baseline, %d constraint)\n", len(catalog), baseline, constraint)
		return nil
	}

	for _, e := range lint.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
	return fmt.Errorf("catalog validation failed: %d error(s)", len(lint.Errors))
}
