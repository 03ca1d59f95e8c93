package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the runtime configuration from .capeval/config.yaml.
// Every setting has a flag counterpart; flags win over the file.
type Config struct {
	Retries  int            `yaml:"retries"`
	TasksDir string         `yaml:"tasks_dir"`
	Out      string         `yaml:"out"`
	Color    bool           `yaml:"color"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	History  HistoryConfig  `yaml:"history"`
}

// AnalyzerConfig defines summary defaults.
type AnalyzerConfig struct {
	// AllAttempts counts failure modes over every failed attempt instead of
	// final outcomes only.
	AllAttempts bool `yaml:"all_attempts"`
}

// HistoryConfig defines the durable run store settings.
type HistoryConfig struct {
	Persist bool   `yaml:"persist"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Retries:  3,
		TasksDir: "tasks",
		Out:      "results/pilot_results.csv",
		Color:    true,
		History: HistoryConfig{
			Persist: false,
			Path:    ".capeval/history.db",
		},
	}
}

// LoadConfig reads and parses a runtime config YAML file, interpolating
// ${VAR} environment references. Returns defaults if the file doesn't exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	interpolated := interpolateEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match // Leave unresolved if not set.
	})
}
