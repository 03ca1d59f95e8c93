package results

import (
	"sort"

	"capeval/pkg/task"
)

// Options controls how persisted rows are summarized.
type Options struct {
	// AllAttempts counts failure modes across every failed attempt instead
	// of the default policy, which counts each task's final outcome only
	// (first passing attempt, else the last attempt). The two policies give
	// different numbers; the default matches the pilot's reported figures.
	AllAttempts bool

	// Catalog, when set, enables the per-kind breakdown and the detection
	// of catalog tasks with no recorded rows.
	Catalog task.Catalog
}

// TaskOutcome is the final outcome of one task: pass iff any attempt for
// the task passed.
type TaskOutcome struct {
	TaskID      string
	Kind        task.Kind // empty without a catalog
	Passed      bool
	Attempts    int
	FailureMode string // final attempt's mode when not passed
}

// KindStats aggregates outcomes for one task kind.
type KindStats struct {
	Tasks  int
	Passed int
}

// Summary is the derived, stateless aggregate over a result set.
type Summary struct {
	Outcomes      []TaskOutcome  // sorted by task_id
	TasksWithData int
	TasksPassed   int
	ByKind        map[task.Kind]KindStats // populated when a catalog was given
	FailureModes  map[string]int
	NoData        []string // catalog tasks with zero recorded rows
}

// PassRate returns #tasks passed / #tasks with data, or 0 when no task has
// data. Tasks with zero recorded attempts never count as pass or fail.
func (s Summary) PassRate() float64 {
	if s.TasksWithData == 0 {
		return 0
	}
	return float64(s.TasksPassed) / float64(s.TasksWithData)
}

// Analyze computes per-task outcomes, pass rates, and failure-mode
// frequency counts from persisted attempt rows. It never mutates its input.
func Analyze(rows []Attempt, opts Options) Summary {
	byTask := make(map[string][]Attempt)
	for _, a := range rows {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}

	kinds := opts.Catalog.Kinds()

	summary := Summary{
		FailureModes: make(map[string]int),
	}
	if len(opts.Catalog) > 0 {
		summary.ByKind = make(map[task.Kind]KindStats)
	}

	ids := make([]string, 0, len(byTask))
	for id := range byTask {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		attempts := byTask[id]
		sort.SliceStable(attempts, func(i, j int) bool {
			return attempts[i].Attempt < attempts[j].Attempt
		})

		// Final outcome: first passing attempt, else the last attempt.
		final := attempts[len(attempts)-1]
		for _, a := range attempts {
			if a.Passed {
				final = a
				break
			}
		}

		outcome := TaskOutcome{
			TaskID:   id,
			Kind:     kinds[id],
			Passed:   final.Passed,
			Attempts: len(attempts),
		}
		if !final.Passed {
			outcome.FailureMode = final.FailureMode
		}
		summary.Outcomes = append(summary.Outcomes, outcome)

		summary.TasksWithData++
		if final.Passed {
			summary.TasksPassed++
		}
		if summary.ByKind != nil {
			stats := summary.ByKind[outcome.Kind]
			stats.Tasks++
			if final.Passed {
				stats.Passed++
			}
			summary.ByKind[outcome.Kind] = stats
		}

		if opts.AllAttempts {
			for _, a := range attempts {
				if !a.Passed {
					summary.FailureModes[a.FailureMode]++
				}
			}
		} else if !final.Passed {
			summary.FailureModes[final.FailureMode]++
		}
	}

	for _, t := range opts.Catalog {
		if _, ok := byTask[t.ID]; !ok {
			summary.NoData = append(summary.NoData, t.ID)
		}
	}

	return summary
}
