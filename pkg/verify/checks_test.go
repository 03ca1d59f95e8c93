package verify

import (
	"strings"
	"testing"

	"capeval/pkg/task"
)

func runCheck(t *testing.T, check task.CheckSpec, output string) Verdict {
	t.Helper()
	return Validate(constraintTask(check), output)
}

func wantMode(t *testing.T, v Verdict, mode FailureMode) {
	t.Helper()
	if v.Passed {
		t.Fatalf("expected failure with %s, got pass", mode)
	}
	if v.Mode != mode {
		t.Fatalf("Mode = %s (%s), want %s", v.Mode, v.Detail, mode)
	}
}

func wantPass(t *testing.T, v Verdict) {
	t.Helper()
	if !v.Passed {
		t.Fatalf("expected pass, got %s (%s)", v.Mode, v.Detail)
	}
}

func TestRawExactNoSpaces(t *testing.T) {
	check := task.CheckSpec{Kind: "raw_exact_no_spaces", Exact: "a,b,c"}

	wantPass(t, runCheck(t, check, "a,b,c"))
	wantPass(t, runCheck(t, check, "a,b,c\n"))
	wantMode(t, runCheck(t, check, "a, b, c"), ModeHasSpaces)
	wantMode(t, runCheck(t, check, "a,b,d"), ModeMismatch)

	// Space check runs before the exact match: a correct answer with an
	// added space is HAS_SPACES, not MISMATCH.
	wantMode(t, runCheck(t, check, "a,b,c "), ModeHasSpaces)
}

func TestDecodeFailuresShortCircuit(t *testing.T) {
	check := task.CheckSpec{Kind: "json_exact", RequiredKeys: []string{"a"}}

	wantMode(t, runCheck(t, check, "not json at all"), ModeInvalidJSON)
	wantMode(t, runCheck(t, check, `{"a": 1} trailing`), ModeInvalidJSON)
	wantMode(t, runCheck(t, check, `[1, 2, 3]`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `"just a string"`), ModeInvalidType)
	wantPass(t, runCheck(t, check, ` {"a": 1} `))
}

func TestJSONExact(t *testing.T) {
	check := task.CheckSpec{
		Kind:         "json_exact",
		RequiredKeys: []string{"a", "b"},
		NoExtraKeys:  true,
		Equals:       map[string]any{"a": "x", "b": float64(2)},
	}

	wantPass(t, runCheck(t, check, `{"a": "x", "b": 2}`))
	wantMode(t, runCheck(t, check, `{"a": "x"}`), ModeMissingKeys)
	wantMode(t, runCheck(t, check, `{"a": "x", "b": 2, "c": 3}`), ModeExtraKeys)
	wantMode(t, runCheck(t, check, `{"a": "y", "b": 2}`), ModeConstraintViolation)
}

func TestJSONExactOrderingTieBreak(t *testing.T) {
	check := task.CheckSpec{
		Kind:         "json_exact",
		RequiredKeys: []string{"a", "b"},
		NoExtraKeys:  true,
		Equals:       map[string]any{"a": "x"},
	}

	// Violates required-keys (b missing), extra-keys (c present), and the
	// pinned value of a. Only the first check in order is reported.
	v := runCheck(t, check, `{"a": "wrong", "c": 1}`)
	wantMode(t, v, ModeMissingKeys)

	// With b restored, extra-keys fires before the value comparison.
	v = runCheck(t, check, `{"a": "wrong", "b": 1, "c": 1}`)
	wantMode(t, v, ModeExtraKeys)
}

func TestJSONExactEqualsNumericTolerance(t *testing.T) {
	// Catalog values decoded as int (YAML) or float64 (JSON) must compare
	// equal to whole JSON numbers in the output.
	check := task.CheckSpec{
		Kind:         "json_exact",
		RequiredKeys: []string{"n"},
		Equals:       map[string]any{"n": 5},
	}
	wantPass(t, runCheck(t, check, `{"n": 5}`))
	wantMode(t, runCheck(t, check, `{"n": 6}`), ModeConstraintViolation)
}

func TestJSONWordsList(t *testing.T) {
	check := task.CheckSpec{Kind: "json_words_list", Key: "words", ListLen: 3, WordLen: 5}

	wantPass(t, runCheck(t, check, `{"words": ["apple", "bread", "crane"]}`))
	wantMode(t, runCheck(t, check, `{"other": []}`), ModeMissingKeys)
	wantMode(t, runCheck(t, check, `{"words": "apple"}`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `{"words": ["apple", "bread"]}`), ModeCountMismatch)
	wantMode(t, runCheck(t, check, `{"words": ["apple", "bread", 42]}`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `{"words": ["apple", "bread", "go"]}`), ModeConstraintViolation)
}

func TestJSONWordsListCountsRunes(t *testing.T) {
	check := task.CheckSpec{Kind: "json_words_list", Key: "words", ListLen: 1, WordLen: 5}
	// Five characters, more than five bytes.
	wantPass(t, runCheck(t, check, `{"words": ["héllo"]}`))
}

func TestJSONForbiddenChars(t *testing.T) {
	check := task.CheckSpec{
		Kind: "json_string_forbidden_chars", Key: "sentence",
		ForbiddenChars: []string{"e", "E"},
	}

	wantPass(t, runCheck(t, check, `{"sentence": "a dog ran far"}`))
	wantMode(t, runCheck(t, check, `{"sentence": "an elephant"}`), ModeForbiddenToken)
	wantMode(t, runCheck(t, check, `{"sentence": 7}`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `{}`), ModeMissingKeys)
}

func TestJSONCrossfieldCharcount(t *testing.T) {
	check := task.CheckSpec{Kind: "json_crossfield_charcount", TextKey: "text", CountKey: "count"}

	wantPass(t, runCheck(t, check, `{"text": "hello", "count": 5}`))
	wantMode(t, runCheck(t, check, `{"text": "hello", "count": 4}`), ModeCountMismatch)
	wantMode(t, runCheck(t, check, `{"text": "hello"}`), ModeMissingKeys)
	wantMode(t, runCheck(t, check, `{"text": 5, "count": 5}`), ModeInvalidType)

	// A fractional count is not an integer.
	wantMode(t, runCheck(t, check, `{"text": "hello", "count": 5.0}`), ModeInvalidType)
	// A quoted count is not an integer either.
	wantMode(t, runCheck(t, check, `{"text": "hello", "count": "5"}`), ModeInvalidType)
}

func TestJSONListExact(t *testing.T) {
	check := task.CheckSpec{
		Kind: "json_list_exact", Key: "sorted",
		Exact: []any{1, 2, 3},
	}

	wantPass(t, runCheck(t, check, `{"sorted": [1, 2, 3]}`))
	wantMode(t, runCheck(t, check, `{"sorted": [3, 2, 1]}`), ModeMismatch)
	wantMode(t, runCheck(t, check, `{"sorted": [1, 2]}`), ModeMismatch)
	wantMode(t, runCheck(t, check, `{}`), ModeMissingKeys)
}

func TestJSONVowelCount(t *testing.T) {
	check := task.CheckSpec{
		Kind: "json_vowel_count", XKey: "x", YKey: "y",
		Len: 6, Regex: "[a-z]+$",
	}

	// "banana" has 3 vowels.
	wantPass(t, runCheck(t, check, `{"x": "banana", "y": 3}`))
	wantMode(t, runCheck(t, check, `{"x": "banana", "y": 2}`), ModeCountMismatch)
	wantMode(t, runCheck(t, check, `{"x": "banan", "y": 2}`), ModeConstraintViolation)
	wantMode(t, runCheck(t, check, `{"x": "BANANA", "y": 3}`), ModeConstraintViolation)
	wantMode(t, runCheck(t, check, `{"x": "banana"}`), ModeMissingKeys)
	wantMode(t, runCheck(t, check, `{"x": 6, "y": 3}`), ModeInvalidType)
}

func TestJSONEnum(t *testing.T) {
	check := task.CheckSpec{Kind: "json_enum", Key: "color", Allowed: []string{"red", "green", "blue"}}

	wantPass(t, runCheck(t, check, `{"color": "green"}`))
	wantMode(t, runCheck(t, check, `{"color": "purple"}`), ModeConstraintViolation)
	wantMode(t, runCheck(t, check, `{"color": "red", "note": "hi"}`), ModeExtraKeys)
	wantMode(t, runCheck(t, check, `{"color": 3}`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `{"colour": "red"}`), ModeMissingKeys)
}

func TestJSONDigitSum(t *testing.T) {
	check := task.CheckSpec{Kind: "json_digit_sum", IDKey: "id", SumKey: "sum", Digits: 4}

	wantPass(t, runCheck(t, check, `{"id": "1234", "sum": 10}`))
	wantMode(t, runCheck(t, check, `{"id": "1234", "sum": 9}`), ModeCountMismatch)
	wantMode(t, runCheck(t, check, `{"id": "123", "sum": 6}`), ModeConstraintViolation)
	wantMode(t, runCheck(t, check, `{"id": "12a4", "sum": 7}`), ModeConstraintViolation)
	wantMode(t, runCheck(t, check, `{"id": 1234, "sum": 10}`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `{"id": "1234"}`), ModeMissingKeys)

	// Only ASCII digits count; Arabic-Indic digits are the right length but
	// still violate the constraint.
	wantMode(t, runCheck(t, check, `{"id": "١٢٣٤", "sum": 10}`), ModeConstraintViolation)
}

func TestJSONDigitSumLargeWidth(t *testing.T) {
	// A lint-clean catalog may pin any positive width. The checker must
	// return a verdict for every width, never crash the run.
	wide := task.CheckSpec{Kind: "json_digit_sum", IDKey: "id", SumKey: "sum", Digits: 1001}
	wantMode(t, runCheck(t, wide, `{"id": "1234", "sum": 10}`), ModeConstraintViolation)

	id := strings.Repeat("1", 1001)
	wantPass(t, runCheck(t, wide, `{"id": "`+id+`", "sum": 1001}`))
	wantMode(t, runCheck(t, wide, `{"id": "`+id+`", "sum": 1000}`), ModeCountMismatch)
}

func TestJSONUniqueLetters(t *testing.T) {
	check := task.CheckSpec{
		Kind: "json_unique_letters", LettersKey: "letters", UniqueKey: "unique",
		Len: 5, Regex: "[a-z]+$",
	}

	wantPass(t, runCheck(t, check, `{"letters": "abcde", "unique": true}`))
	wantPass(t, runCheck(t, check, `{"letters": "abcda", "unique": false}`))
	wantMode(t, runCheck(t, check, `{"letters": "abcda", "unique": true}`), ModeInconsistentFields)
	wantMode(t, runCheck(t, check, `{"letters": "abcde", "unique": false}`), ModeInconsistentFields)
	wantMode(t, runCheck(t, check, `{"letters": "abcd", "unique": true}`), ModeConstraintViolation)
	wantMode(t, runCheck(t, check, `{"letters": "abcde", "unique": "yes"}`), ModeInvalidType)
	wantMode(t, runCheck(t, check, `{"letters": "abcde"}`), ModeMissingKeys)
}
