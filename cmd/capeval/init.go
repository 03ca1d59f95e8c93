package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleBaselineTasks = `[
  {
    "task_id": "B1",
    "kind": "baseline",
    "prompt": "What is 6 * 7? Reply with just the number.",
    "spec": {"expected_answer": "42"}
  },
  {
    "task_id": "B2",
    "kind": "baseline",
    "prompt": "Spell the word 'cat' backwards. Reply with just the word.",
    "spec": {"expected_answer": "tac"}
  }
]
`

const sampleConstraintTasks = `[
  {
    "task_id": "C1",
    "kind": "constraint",
    "prompt": "Reply with a JSON object containing exactly one key, \"color\", whose value is one of: red, green, blue.",
    "spec": {"check": {"kind": "json_enum", "key": "color", "allowed": ["red", "green", "blue"]}}
  },
  {
    "task_id": "C2",
    "kind": "constraint",
    "prompt": "Reply with a JSON object {\"text\": <any string>, \"count\": <the number of characters in text>}.",
    "spec": {"check": {"kind": "json_crossfield_charcount", "text_key": "text", "count_key": "count"}}
  },
  {
    "task_id": "C3",
    "kind": "constraint",
    "prompt": "Reply with a JSON object {\"words\": [...]} containing exactly 3 words of exactly 5 letters each.",
    "spec": {"check": {"kind": "json_words_list", "key": "words", "list_len": 3, "word_len": 5}}
  }
]
`

// handleInit implements `capeval init [--output=dir]`: scaffolds a tasks
// directory with sample baseline and constraint task files.
func handleInit(args []string) error {
	dir := stringFlag(args, "output", "tasks")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create tasks dir %s: %w", dir, err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"baseline_tasks.json", sampleBaselineTasks},
		{"constraint_tasks.json", sampleConstraintTasks},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; not overwriting", path)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Created %s\n", path)
	}

	fmt.Printf("\nNext: capeval validate --tasks=%s\n", dir)
	return nil
}
