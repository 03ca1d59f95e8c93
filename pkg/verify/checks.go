package verify

import (
	"encoding/json"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"capeval/pkg/task"
)

// CheckFunc evaluates one parameterized constraint check against a raw
// output string.
type CheckFunc func(spec task.CheckSpec, output string) Verdict

// checkers maps check kind names to their implementations. The set is
// closed; pkg/task.Lint rejects catalogs naming kinds absent from this map.
var checkers = map[string]CheckFunc{
	"raw_exact_no_spaces":         checkRawExactNoSpaces,
	"json_exact":                  checkJSONExact,
	"json_words_list":             checkJSONWordsList,
	"json_string_forbidden_chars": checkJSONForbiddenChars,
	"json_crossfield_charcount":   checkJSONCrossfieldCharcount,
	"json_list_exact":             checkJSONListExact,
	"json_vowel_count":            checkJSONVowelCount,
	"json_enum":                   checkJSONEnum,
	"json_digit_sum":              checkJSONDigitSum,
	"json_unique_letters":         checkJSONUniqueLetters,
}

const vowels = "aeiouAEIOU"

// decodeObject parses an output as a single JSON object. Numbers are kept
// as json.Number so integer-typed fields can be told apart from floats.
// A parse failure (including trailing content) is INVALID_JSON; a non-object
// value is INVALID_TYPE. Both short-circuit the remaining checks.
func decodeObject(output string) (map[string]any, *Verdict) {
	dec := json.NewDecoder(strings.NewReader(output))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		bad := failf(ModeInvalidJSON, "%v", err)
		return nil, &bad
	}
	if _, err := dec.Token(); err != io.EOF {
		bad := fail(ModeInvalidJSON, "trailing content after JSON value")
		return nil, &bad
	}

	obj, ok := v.(map[string]any)
	if !ok {
		bad := fail(ModeInvalidType, "expected JSON object")
		return nil, &bad
	}
	return obj, nil
}

// asString returns the value as a string if it decoded as one.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asInt returns the value as an integer. Only whole JSON numbers qualify:
// 3 is an int, 3.0 and "3" are not.
func asInt(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

// normalize rewrites decoded values into a canonical form so that values
// decoded by different front ends (JSON outputs with json.Number, JSON or
// YAML catalogs with float64/int) compare equal when numerically equal.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}

func valueEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// matchPrefix reports whether the pattern matches at the start of s
// (unanchored tail, anchored head). An uncompilable pattern never matches;
// Lint rejects such catalogs before a run.
func matchPrefix(pattern, s string) bool {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// checkRawExactNoSpaces operates on the raw (non-JSON) output: no space
// characters anywhere, then exact match after stripping trailing newlines.
func checkRawExactNoSpaces(spec task.CheckSpec, output string) Verdict {
	raw := strings.TrimRight(output, "\n")
	if strings.Contains(raw, " ") {
		return fail(ModeHasSpaces, "output contains spaces")
	}
	expected, _ := spec.Exact.(string)
	if raw == expected {
		return pass()
	}
	return failf(ModeMismatch, "expected exact %q, got %q", expected, raw)
}

// checkJSONExact requires the presence of every required key, optionally
// forbids extras, then compares pinned values key by key in sorted key
// order so the first reported violation is deterministic.
func checkJSONExact(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	var missing []string
	for _, k := range spec.RequiredKeys {
		if _, ok := obj[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return failf(ModeMissingKeys, "missing: %v", missing)
	}

	if spec.NoExtraKeys {
		required := make(map[string]bool, len(spec.RequiredKeys))
		for _, k := range spec.RequiredKeys {
			required[k] = true
		}
		var extra []string
		for k := range obj {
			if !required[k] {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return failf(ModeExtraKeys, "extra: %v", extra)
		}
	}

	keys := make([]string, 0, len(spec.Equals))
	for k := range spec.Equals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !valueEqual(obj[k], spec.Equals[k]) {
			return failf(ModeConstraintViolation, "%s expected %v, got %v", k, spec.Equals[k], obj[k])
		}
	}

	return pass()
}

// checkJSONWordsList requires obj[key] to be a list of exactly list_len
// strings, each exactly word_len characters long.
func checkJSONWordsList(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	v, ok := obj[spec.Key]
	if !ok {
		return failf(ModeMissingKeys, "missing key: %s", spec.Key)
	}
	words, ok := v.([]any)
	if !ok {
		return failf(ModeInvalidType, "%s must be a list", spec.Key)
	}
	if len(words) != spec.ListLen {
		return failf(ModeCountMismatch, "expected %d words, got %d", spec.ListLen, len(words))
	}
	for _, w := range words {
		s, ok := asString(w)
		if !ok {
			return fail(ModeInvalidType, "all words must be strings")
		}
		if n := utf8.RuneCountInString(s); n != spec.WordLen {
			return failf(ModeConstraintViolation, "word %q length %d != %d", s, n, spec.WordLen)
		}
	}
	return pass()
}

// checkJSONForbiddenChars requires obj[key] to be a string containing none
// of the forbidden characters, reported in declaration order.
func checkJSONForbiddenChars(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	v, ok := obj[spec.Key]
	if !ok {
		return failf(ModeMissingKeys, "missing key: %s", spec.Key)
	}
	s, ok := asString(v)
	if !ok {
		return failf(ModeInvalidType, "%s must be a string", spec.Key)
	}
	for _, ch := range spec.ForbiddenChars {
		if strings.Contains(s, ch) {
			return failf(ModeForbiddenToken, "found forbidden char %q", ch)
		}
	}
	return pass()
}

// checkJSONCrossfieldCharcount requires obj[count_key] to equal the
// character count of obj[text_key].
func checkJSONCrossfieldCharcount(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	tv, tok := obj[spec.TextKey]
	cv, cok := obj[spec.CountKey]
	if !tok || !cok {
		return failf(ModeMissingKeys, "need keys: %s, %s", spec.TextKey, spec.CountKey)
	}
	text, tok := asString(tv)
	count, cok := asInt(cv)
	if !tok || !cok {
		return failf(ModeInvalidType, "%s must be string; %s must be int", spec.TextKey, spec.CountKey)
	}
	if got := int64(utf8.RuneCountInString(text)); count != got {
		return failf(ModeCountMismatch, "count=%d but len(text)=%d", count, got)
	}
	return pass()
}

// checkJSONListExact requires obj[key] to equal the pinned list exactly.
func checkJSONListExact(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	v, ok := obj[spec.Key]
	if !ok {
		return failf(ModeMissingKeys, "missing key: %s", spec.Key)
	}
	if !valueEqual(v, spec.Exact) {
		return failf(ModeMismatch, "expected %v, got %v", spec.Exact, v)
	}
	return pass()
}

// checkJSONVowelCount requires obj[x_key] to be a string of the pinned
// length (optionally matching a pattern) and obj[y_key] to equal its vowel
// count.
func checkJSONVowelCount(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	xv, xok := obj[spec.XKey]
	yv, yok := obj[spec.YKey]
	if !xok || !yok {
		return failf(ModeMissingKeys, "need keys: %s, %s", spec.XKey, spec.YKey)
	}
	x, xok := asString(xv)
	y, yok := asInt(yv)
	if !xok || !yok {
		return failf(ModeInvalidType, "%s must be string; %s must be int", spec.XKey, spec.YKey)
	}
	if n := utf8.RuneCountInString(x); n != spec.Len {
		return failf(ModeConstraintViolation, "%s length %d != %d", spec.XKey, n, spec.Len)
	}
	if spec.Regex != "" && !matchPrefix(spec.Regex, x) {
		return failf(ModeConstraintViolation, "%s fails regex", spec.XKey)
	}
	var want int64
	for _, r := range x {
		if strings.ContainsRune(vowels, r) {
			want++
		}
	}
	if y != want {
		return failf(ModeCountMismatch, "%s=%d but vowel_count=%d", spec.YKey, y, want)
	}
	return pass()
}

// checkJSONEnum requires obj[key] to be one of the allowed strings and the
// object to carry exactly that one key.
func checkJSONEnum(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	v, ok := obj[spec.Key]
	if !ok {
		return failf(ModeMissingKeys, "missing key: %s", spec.Key)
	}
	s, ok := asString(v)
	if !ok {
		return failf(ModeInvalidType, "%s must be a string", spec.Key)
	}
	allowed := false
	for _, a := range spec.Allowed {
		if s == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return failf(ModeConstraintViolation, "%q not in allowed %v", s, spec.Allowed)
	}
	if len(obj) != 1 {
		return failf(ModeExtraKeys, "only %q key is allowed", spec.Key)
	}
	return pass()
}

// checkJSONDigitSum requires obj[id_key] to be exactly the pinned number of
// ASCII digits and obj[sum_key] to equal their sum.
func checkJSONDigitSum(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	iv, iok := obj[spec.IDKey]
	sv, sok := obj[spec.SumKey]
	if !iok || !sok {
		return failf(ModeMissingKeys, "need keys: %s, %s", spec.IDKey, spec.SumKey)
	}
	id, iok := asString(iv)
	total, sok := asInt(sv)
	if !iok || !sok {
		return failf(ModeInvalidType, "%s must be string; %s must be int", spec.IDKey, spec.SumKey)
	}
	if utf8.RuneCountInString(id) != spec.Digits {
		return failf(ModeConstraintViolation, "%s must be exactly %d digits", spec.IDKey, spec.Digits)
	}
	var want int64
	for _, r := range id {
		if r < '0' || r > '9' {
			return failf(ModeConstraintViolation, "%s must be exactly %d digits", spec.IDKey, spec.Digits)
		}
		want += int64(r - '0')
	}
	if total != want {
		return failf(ModeCountMismatch, "%s=%d but digit_sum=%d", spec.SumKey, total, want)
	}
	return pass()
}

// checkJSONUniqueLetters requires obj[letters_key] to be a string of the
// pinned length (optionally matching a pattern) and obj[unique_key] to be a
// boolean consistent with whether all its characters are distinct.
func checkJSONUniqueLetters(spec task.CheckSpec, output string) Verdict {
	obj, bad := decodeObject(output)
	if bad != nil {
		return *bad
	}

	lv, lok := obj[spec.LettersKey]
	uv, uok := obj[spec.UniqueKey]
	if !lok || !uok {
		return failf(ModeMissingKeys, "need keys: %s, %s", spec.LettersKey, spec.UniqueKey)
	}
	letters, lok := asString(lv)
	unique, uok := uv.(bool)
	if !lok || !uok {
		return failf(ModeInvalidType, "%s must be string; %s must be boolean", spec.LettersKey, spec.UniqueKey)
	}
	if n := utf8.RuneCountInString(letters); n != spec.Len {
		return failf(ModeConstraintViolation, "%s length %d != %d", spec.LettersKey, n, spec.Len)
	}
	if spec.Regex != "" && !matchPrefix(spec.Regex, letters) {
		return failf(ModeConstraintViolation, "%s fails regex", spec.LettersKey)
	}
	seen := make(map[rune]bool)
	allUnique := true
	for _, r := range letters {
		if seen[r] {
			allUnique = false
			break
		}
		seen[r] = true
	}
	if unique != allUnique {
		return failf(ModeInconsistentFields, "%s=%t but all_unique=%t", spec.UniqueKey, unique, allUnique)
	}
	return pass()
}
