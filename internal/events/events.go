// Package events is an append-only JSONL audit log of run lifecycle events.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventRunStarted     EventType = "run_started"
	EventCommandStarted EventType = "command_started"
	EventCommandExited  EventType = "command_exited"
	EventCommandClosed  EventType = "command_closed"
	EventRunRestarted   EventType = "run_restarted"
	EventRunEdited      EventType = "run_edited"
	EventRunCompleted   EventType = "run_completed"
	EventStaleDropped   EventType = "stale_event"
)

// Event represents a logged event
type Event struct {
	Time       string    `json:"time"`
	Type       EventType `json:"type"`
	RunID      string    `json:"run_id"`
	Epoch      uint64    `json:"epoch,omitempty"`
	Index      int       `json:"index,omitempty"`
	Count      int       `json:"count,omitempty"`
	Command    string    `json:"command,omitempty"`
	ExitStatus *int      `json:"exit_status,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// Logger handles event logging
type Logger struct {
	eventsFile string
}

// NewLogger creates a logger writing to events.jsonl inside dir.
func NewLogger(dir string) *Logger {
	return &Logger{
		eventsFile: filepath.Join(dir, "events.jsonl"),
	}
}

// Log writes an event to the events file
func (l *Logger) Log(event *Event) error {
	if event.Time == "" {
		event.Time = time.Now().Format(time.RFC3339)
	}

	f, err := os.OpenFile(l.eventsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	return nil
}

// LogRunStarted logs the start of a run under the given epoch.
func (l *Logger) LogRunStarted(runID string, epoch uint64, commandCount int) error {
	return l.Log(&Event{
		Type:  EventRunStarted,
		RunID: runID,
		Epoch: epoch,
		Count: commandCount,
	})
}

// LogCommandStarted logs a start-session request for one command.
func (l *Logger) LogCommandStarted(runID string, epoch uint64, index int, command string) error {
	return l.Log(&Event{
		Type:    EventCommandStarted,
		RunID:   runID,
		Epoch:   epoch,
		Index:   index,
		Command: command,
	})
}

// LogCommandExited logs a completion event for one command.
func (l *Logger) LogCommandExited(runID string, epoch uint64, index int, command string, exitStatus *int) error {
	return l.Log(&Event{
		Type:       EventCommandExited,
		RunID:      runID,
		Epoch:      epoch,
		Index:      index,
		Command:    command,
		ExitStatus: exitStatus,
	})
}

// LogCommandClosed logs a session destroyed by the user.
func (l *Logger) LogCommandClosed(runID string, command string) error {
	return l.Log(&Event{
		Type:    EventCommandClosed,
		RunID:   runID,
		Command: command,
	})
}

// LogRunCompleted logs the end of a run with its outcome.
func (l *Logger) LogRunCompleted(runID string, outcome string) error {
	return l.Log(&Event{
		Type:  EventRunCompleted,
		RunID: runID,
		Note:  outcome,
	})
}

// LogRunRestarted logs a full-run restart under a new epoch.
func (l *Logger) LogRunRestarted(runID string, epoch uint64) error {
	return l.Log(&Event{
		Type:  EventRunRestarted,
		RunID: runID,
		Epoch: epoch,
	})
}

// LogRunEdited logs a live-edit reconciliation under a new epoch.
func (l *Logger) LogRunEdited(runID string, epoch uint64, commandCount int) error {
	return l.Log(&Event{
		Type:  EventRunEdited,
		RunID: runID,
		Epoch: epoch,
		Count: commandCount,
	})
}

// Recent returns the most recent N events
func (l *Logger) Recent(n int) ([]Event, error) {
	data, err := os.ReadFile(l.eventsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var allEvents []Event
	for _, line := range splitLines(data) {
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip invalid lines
		}
		allEvents = append(allEvents, event)
	}

	// Return last N events
	if len(allEvents) <= n {
		return allEvents, nil
	}
	return allEvents[len(allEvents)-n:], nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
