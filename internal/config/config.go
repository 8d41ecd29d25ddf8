// Package config loads the run configuration: the command list, shell,
// working directory and completion behavior. Values come from a YAML file,
// overridable through RUNQ_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultFile = "runq.yaml"

// commandSeparator splits commands given as a single joined string.
const commandSeparator = "&&"

// CommandList accepts either a YAML sequence of commands or a single string
// of commands joined with "&&". Entries are trimmed; empties dropped.
type CommandList []string

func (c *CommandList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*c = cleanLines(raw)
		return nil
	case yaml.ScalarNode:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*c = cleanLines(strings.Split(raw, commandSeparator))
		return nil
	default:
		return fmt.Errorf("commands must be a list or a %q-joined string", commandSeparator)
	}
}

func cleanLines(raw []string) []string {
	var lines []string
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

type Config struct {
	Commands               CommandList `yaml:"commands"`
	Shell                  string      `yaml:"shell" env:"RUNQ_SHELL"`
	Folder                 string      `yaml:"folder" env:"RUNQ_FOLDER"`
	StopOnFailure          bool        `yaml:"stop_on_failure" env:"RUNQ_STOP_ON_FAILURE"`
	PanesToRunOnCompletion []string    `yaml:"panes_to_run_on_completion"`
}

// Load reads the config file, applies defaults and environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		Shell:  "bash",
		Folder: ".",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Commands) == 0 {
		return fmt.Errorf("config has no commands to run")
	}
	if c.Shell == "" {
		return fmt.Errorf("shell must not be empty")
	}
	return nil
}

// EditFilePath is where the live-edit artifact lives, next to the commands'
// working directory so the editor opens something local.
func (c *Config) EditFilePath(name string) string {
	return filepath.Join(c.WorkDir(), name)
}

// WorkDir is the expanded working directory for command sessions.
func (c *Config) WorkDir() string {
	return expandPath(c.Folder)
}

// DataDir is where runq keeps its event log and run history.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "runq")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
