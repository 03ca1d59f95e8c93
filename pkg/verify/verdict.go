package verify

import "fmt"

// FailureMode labels why an output failed validation. The vocabulary is
// fixed and enumerated; analyzers aggregate on these labels, so checkers
// must never invent new ones ad hoc.
type FailureMode string

const (
	// ModeWrongAnswer is the single failure mode for baseline tasks.
	ModeWrongAnswer FailureMode = "WRONG_ANSWER"

	// Structural decode failures. These short-circuit all later checks.
	ModeInvalidJSON FailureMode = "INVALID_JSON"
	ModeInvalidType FailureMode = "INVALID_TYPE"

	// Constraint check failures.
	ModeMissingKeys         FailureMode = "MISSING_KEYS"
	ModeExtraKeys           FailureMode = "EXTRA_KEYS"
	ModeConstraintViolation FailureMode = "CONSTRAINT_VIOLATION"
	ModeCountMismatch       FailureMode = "COUNT_MISMATCH"
	ModeMismatch            FailureMode = "MISMATCH"
	ModeHasSpaces           FailureMode = "HAS_SPACES"
	ModeForbiddenToken      FailureMode = "FORBIDDEN_TOKEN"
	ModeInconsistentFields  FailureMode = "INCONSISTENT_FIELDS"

	// Catalog defects. Lint reports these before a run ever starts.
	ModeUnknownValidator FailureMode = "UNKNOWN_VALIDATOR"
	ModeUnknownTaskType  FailureMode = "UNKNOWN_TASK_TYPE"
)

// Verdict is the transient result of one validation call. Mode is empty
// iff Passed; Detail carries a human-readable diagnostic for operators and
// is never used for aggregation.
type Verdict struct {
	Passed bool        `json:"passed"`
	Mode   FailureMode `json:"failure_mode,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

func pass() Verdict {
	return Verdict{Passed: true}
}

func fail(mode FailureMode, detail string) Verdict {
	return Verdict{Passed: false, Mode: mode, Detail: detail}
}

func failf(mode FailureMode, format string, args ...any) Verdict {
	return fail(mode, fmt.Sprintf(format, args...))
}
