package verify

import (
	"strings"

	"capeval/pkg/task"
)

// Validate maps one task definition and one raw output string to a Verdict.
// It is pure and deterministic: no I/O, no randomness, and repeated calls
// with identical inputs yield identical verdicts. It never panics; malformed
// outputs and malformed task definitions both come back as failed verdicts.
func Validate(t task.Task, output string) Verdict {
	switch t.Kind {
	case task.KindBaseline:
		return validateBaseline(t, output)
	case task.KindConstraint:
		return validateConstraint(t, output)
	default:
		return failf(ModeUnknownTaskType, "unknown task kind %q", t.Kind)
	}
}

// validateBaseline enforces exact answer match. Normalization policy:
// trailing newlines are stripped from the output and nothing else; the
// comparison is case-sensitive. "42\n" matches an expected "42"; "42 "
// does not.
func validateBaseline(t task.Task, output string) Verdict {
	got := strings.TrimRight(output, "\n")
	if got == t.Spec.ExpectedAnswer {
		return pass()
	}
	return failf(ModeWrongAnswer, "expected %q, got %q", t.Spec.ExpectedAnswer, got)
}

// validateConstraint dispatches to the named checker for the task's check
// kind. Within a checker, conditions run in a fixed order and the first
// failing condition determines the failure mode; later violations are never
// surfaced or aggregated.
func validateConstraint(t task.Task, output string) Verdict {
	check := t.Spec.Check
	if check == nil {
		return fail(ModeUnknownValidator, "constraint task has no check")
	}
	fn, ok := checkers[check.Kind]
	if !ok {
		return failf(ModeUnknownValidator, "unknown check kind %q", check.Kind)
	}
	return fn(*check, output)
}
