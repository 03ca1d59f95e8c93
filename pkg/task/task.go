package task

// Kind discriminates the two validation paths a task can take.
type Kind string

const (
	// KindBaseline tasks are scored by exact answer match.
	KindBaseline Kind = "baseline"
	// KindConstraint tasks are scored by an ordered set of structural checks.
	KindConstraint Kind = "constraint"
)

// Task is one immutable challenge definition. ID is unique within a catalog;
// Kind selects which half of Spec applies.
type Task struct {
	ID     string `json:"task_id" yaml:"task_id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Spec   Spec   `json:"spec" yaml:"spec"`
}

// Spec is the kind-specific payload of a task definition.
// Baseline tasks fill ExpectedAnswer; constraint tasks fill Check.
type Spec struct {
	ExpectedAnswer string     `json:"expected_answer,omitempty" yaml:"expected_answer,omitempty"`
	Check          *CheckSpec `json:"check,omitempty" yaml:"check,omitempty"`
}

// CheckSpec parameterizes one named constraint check. Kind selects the
// checker; the remaining fields are per-kind parameters and only the ones
// the selected checker reads are meaningful.
type CheckSpec struct {
	Kind string `json:"kind" yaml:"kind"`

	// raw_exact_no_spaces (string) and json_list_exact (list).
	Exact any `json:"exact,omitempty" yaml:"exact,omitempty"`

	// json_exact.
	RequiredKeys []string       `json:"required_keys,omitempty" yaml:"required_keys,omitempty"`
	NoExtraKeys  bool           `json:"no_extra_keys,omitempty" yaml:"no_extra_keys,omitempty"`
	Equals       map[string]any `json:"equals,omitempty" yaml:"equals,omitempty"`

	// Single-key checks (json_words_list, json_string_forbidden_chars,
	// json_list_exact, json_enum).
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// json_words_list.
	ListLen int `json:"list_len,omitempty" yaml:"list_len,omitempty"`
	WordLen int `json:"word_len,omitempty" yaml:"word_len,omitempty"`

	// json_string_forbidden_chars.
	ForbiddenChars []string `json:"forbidden_chars,omitempty" yaml:"forbidden_chars,omitempty"`

	// json_crossfield_charcount.
	TextKey  string `json:"text_key,omitempty" yaml:"text_key,omitempty"`
	CountKey string `json:"count_key,omitempty" yaml:"count_key,omitempty"`

	// json_vowel_count.
	XKey string `json:"x_key,omitempty" yaml:"x_key,omitempty"`
	YKey string `json:"y_key,omitempty" yaml:"y_key,omitempty"`

	// json_digit_sum.
	IDKey  string `json:"id_key,omitempty" yaml:"id_key,omitempty"`
	SumKey string `json:"sum_key,omitempty" yaml:"sum_key,omitempty"`
	Digits int    `json:"digits,omitempty" yaml:"digits,omitempty"`

	// json_unique_letters.
	LettersKey string `json:"letters_key,omitempty" yaml:"letters_key,omitempty"`
	UniqueKey  string `json:"unique_key,omitempty" yaml:"unique_key,omitempty"`

	// Shared length/pattern parameters (json_vowel_count, json_unique_letters).
	Len   int    `json:"len,omitempty" yaml:"len,omitempty"`
	Regex string `json:"regex,omitempty" yaml:"regex,omitempty"`

	// json_enum.
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`
}

// Catalog is an ordered, read-only collection of tasks. Iteration order is
// the catalog's declaration order (stable sort by task_id at load time).
type Catalog []Task

// Find returns the task with the given ID, or false if absent.
func (c Catalog) Find(id string) (Task, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Kinds returns a task_id to kind lookup for the catalog.
func (c Catalog) Kinds() map[string]Kind {
	m := make(map[string]Kind, len(c))
	for _, t := range c {
		m[t.ID] = t.Kind
	}
	return m
}
