package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads every task file in dir and returns the merged catalog.
// Files ending in .json are parsed as a JSON array of tasks; .yaml/.yml as a
// YAML sequence. Other files are ignored. The merged catalog is stably
// sorted by task_id so that run order is reproducible regardless of how
// tasks are split across files.
func LoadCatalog(dir string) (Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tasks dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no task files found in %s", dir)
	}

	var catalog Catalog
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read task file %s: %w", path, err)
		}
		tasks, err := ParseTasks(data, name)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, tasks...)
	}

	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].ID < catalog[j].ID
	})

	return catalog, nil
}

// ParseTasks parses one task file's contents into a task list. The name is
// used to pick the format and to contextualize errors.
func ParseTasks(data []byte, name string) ([]Task, error) {
	var tasks []Task
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("parse task file %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("parse task file %s: %w", name, err)
		}
	}
	return tasks, nil
}
