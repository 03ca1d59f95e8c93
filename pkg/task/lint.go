package task

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a single catalog lint failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds all lint errors for a catalog.
type ValidationResult struct {
	Errors []ValidationError
}

// Valid returns true if no lint errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message from all lint errors.
func (r ValidationResult) Error() string {
	if r.Valid() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("catalog validation failed: %s", strings.Join(msgs, "; "))
}

// validCheckKinds lists the recognized constraint check kinds.
// Kept in sync with the checker registry in pkg/verify.
var validCheckKinds = map[string]bool{
	"raw_exact_no_spaces":         true,
	"json_exact":                  true,
	"json_words_list":             true,
	"json_string_forbidden_chars": true,
	"json_crossfield_charcount":   true,
	"json_list_exact":             true,
	"json_vowel_count":            true,
	"json_enum":                   true,
	"json_digit_sum":              true,
	"json_unique_letters":         true,
}

// Lint checks a catalog for structural correctness: unique non-empty IDs,
// known kinds, and the presence of the kind-specific spec payload. A catalog
// that fails lint must not be run; lint errors are configuration errors, not
// validation failures.
func Lint(catalog Catalog) ValidationResult {
	var result ValidationResult

	seen := make(map[string]bool)
	for i, t := range catalog {
		field := func(name string) string {
			if t.ID != "" {
				return fmt.Sprintf("task %s %s", t.ID, name)
			}
			return fmt.Sprintf("tasks[%d].%s", i, name)
		}

		if t.ID == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field: fmt.Sprintf("tasks[%d].task_id", i), Message: "required",
			})
		} else if seen[t.ID] {
			result.Errors = append(result.Errors, ValidationError{
				Field: field("task_id"), Message: fmt.Sprintf("duplicate task_id %q", t.ID),
			})
		} else {
			seen[t.ID] = true
		}

		if t.Prompt == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field: field("prompt"), Message: "required",
			})
		}

		switch t.Kind {
		case KindBaseline:
			if t.Spec.ExpectedAnswer == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field: field("spec.expected_answer"), Message: "required for baseline tasks",
				})
			}
			if t.Spec.Check != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field: field("spec.check"), Message: "not allowed on baseline tasks",
				})
			}
		case KindConstraint:
			result.Errors = append(result.Errors, lintCheck(t, field)...)
		case "":
			result.Errors = append(result.Errors, ValidationError{
				Field: field("kind"), Message: "required",
			})
		default:
			result.Errors = append(result.Errors, ValidationError{
				Field: field("kind"), Message: fmt.Sprintf("unknown kind %q (expected baseline or constraint)", t.Kind),
			})
		}
	}

	return result
}

// lintCheck validates the check payload of a constraint task.
func lintCheck(t Task, field func(string) string) []ValidationError {
	var errs []ValidationError

	check := t.Spec.Check
	if check == nil {
		return []ValidationError{{
			Field: field("spec.check"), Message: "required for constraint tasks",
		}}
	}

	if check.Kind == "" {
		return []ValidationError{{
			Field: field("spec.check.kind"), Message: "required",
		}}
	}
	if !validCheckKinds[check.Kind] {
		return []ValidationError{{
			Field: field("spec.check.kind"), Message: fmt.Sprintf("unknown check kind %q", check.Kind),
		}}
	}

	need := func(name, value string) {
		if value == "" {
			errs = append(errs, ValidationError{
				Field:   field("spec.check." + name),
				Message: fmt.Sprintf("required for %s checks", check.Kind),
			})
		}
	}
	needPositive := func(name string, value int) {
		if value <= 0 {
			errs = append(errs, ValidationError{
				Field:   field("spec.check." + name),
				Message: fmt.Sprintf("must be positive for %s checks", check.Kind),
			})
		}
	}

	switch check.Kind {
	case "raw_exact_no_spaces":
		if _, ok := check.Exact.(string); !ok {
			errs = append(errs, ValidationError{
				Field: field("spec.check.exact"), Message: "must be a string for raw_exact_no_spaces checks",
			})
		}
	case "json_exact":
		if len(check.RequiredKeys) == 0 {
			errs = append(errs, ValidationError{
				Field: field("spec.check.required_keys"), Message: "required for json_exact checks",
			})
		}
	case "json_words_list":
		need("key", check.Key)
		needPositive("list_len", check.ListLen)
		needPositive("word_len", check.WordLen)
	case "json_string_forbidden_chars":
		need("key", check.Key)
	case "json_crossfield_charcount":
		need("text_key", check.TextKey)
		need("count_key", check.CountKey)
	case "json_list_exact":
		need("key", check.Key)
		if check.Exact == nil {
			errs = append(errs, ValidationError{
				Field: field("spec.check.exact"), Message: "required for json_list_exact checks",
			})
		}
	case "json_vowel_count":
		need("x_key", check.XKey)
		need("y_key", check.YKey)
		needPositive("len", check.Len)
	case "json_enum":
		need("key", check.Key)
		if len(check.Allowed) == 0 {
			errs = append(errs, ValidationError{
				Field: field("spec.check.allowed"), Message: "required for json_enum checks",
			})
		}
	case "json_digit_sum":
		need("id_key", check.IDKey)
		need("sum_key", check.SumKey)
		needPositive("digits", check.Digits)
	case "json_unique_letters":
		need("letters_key", check.LettersKey)
		need("unique_key", check.UniqueKey)
		needPositive("len", check.Len)
	}

	if check.Regex != "" {
		if _, err := regexp.Compile(check.Regex); err != nil {
			errs = append(errs, ValidationError{
				Field: field("spec.check.regex"), Message: fmt.Sprintf("invalid pattern: %v", err),
			})
		}
	}

	return errs
}
