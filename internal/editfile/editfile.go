// Package editfile manages the transient plain-text artifact used for live
// editing of the command list: one command per line, written before the edit
// surface opens, read back and deleted after it closes.
package editfile

import (
	"fmt"
	"os"
	"strings"
)

const DefaultName = ".runq-commands"

// Write serializes the command lines to path.
func Write(path string, lines []string) error {
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing edit file: %w", err)
	}
	return nil
}

// Read parses the artifact back into command lines, dropping blank lines and
// trimming whitespace.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading edit file: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Remove deletes the artifact. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
