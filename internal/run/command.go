package run

import (
	"time"

	"github.com/badri/runq/internal/host"
)

// Phase is the lifecycle state of a single command.
type Phase int

const (
	PhasePending Phase = iota
	PhaseRunning
	PhaseExited
	PhaseClosedByUser
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseRunning:
		return "running"
	case PhaseExited:
		return "exited"
	case PhaseClosedByUser:
		return "closed"
	}
	return "unknown"
}

// Command is one entry of the run list together with its observed lifecycle.
// StartedAt/EndedAt are zero when not yet known; Session is empty until the
// host confirms the session opened; ExitStatus is nil until the host reports
// a code (a killed session exits with no code).
type Command struct {
	Line       string
	Phase      Phase
	StartedAt  time.Time
	EndedAt    time.Time
	Session    host.SessionID
	ExitStatus *int
}

func NewCommand(line string) *Command {
	return &Command{Line: line}
}

// Reset returns the command to pending, preserving only its line. Idempotent.
func (c *Command) Reset() {
	*c = Command{Line: c.Line}
}

func (c *Command) Running() bool {
	return c.Phase == PhaseRunning
}

func (c *Command) Exited() bool {
	return c.Phase == PhaseExited
}

func (c *Command) ClosedByUser() bool {
	return c.Phase == PhaseClosedByUser
}

// Succeeded reports whether the command exited with status zero. A command
// that exited with no code, or whose session the user closed, never counts
// as successful.
func (c *Command) Succeeded() bool {
	return c.ExitStatus != nil && *c.ExitStatus == 0
}

// Failed reports a failed terminal state: exited but not with status zero.
func (c *Command) Failed() bool {
	return c.Phase == PhaseExited && !c.Succeeded()
}

// Elapsed is how long the command has been running, or took to run.
func (c *Command) Elapsed(now time.Time) time.Duration {
	if c.StartedAt.IsZero() {
		return 0
	}
	end := c.EndedAt
	if end.IsZero() {
		end = now
	}
	return end.Sub(c.StartedAt)
}
