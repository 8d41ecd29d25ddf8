// Package run implements the command sequencing state machine: a list of
// commands executed one at a time against externally spawned sessions, driven
// entirely by asynchronous lifecycle events. All mutation happens on a single
// logical thread; handlers return host effects rather than performing I/O.
package run

import (
	"strings"
	"time"

	"github.com/badri/runq/internal/host"
)

// none marks an absent index (no command running / nothing selected).
const none = -1

// Options configures a new run state.
type Options struct {
	StopOnFailure bool
	// CompletionPanes are session titles to rerun once the whole run
	// finishes successfully. Handles are resolved opportunistically from
	// host inventory updates.
	CompletionPanes []string
	// EditPath is where the live-edit artifact is written.
	EditPath string
}

// State is the whole orchestrator state: the ordered command list, the
// sequencer cursor, the user's selection, the global flags and the run epoch.
type State struct {
	commands []*Command
	epoch    uint64
	running  int
	selected int
	paused   bool
	stopFail bool

	completionPanes map[string]host.SessionID
	editSessions    map[host.SessionID]struct{}
	editPath        string
}

// New builds the initial state from the configured command lines. Blank
// lines are dropped, everything is trimmed.
func New(lines []string, opts Options) *State {
	s := &State{
		running:         none,
		selected:        none,
		stopFail:        opts.StopOnFailure,
		completionPanes: make(map[string]host.SessionID),
		editSessions:    make(map[host.SessionID]struct{}),
		editPath:        opts.EditPath,
	}
	s.commands = makeCommands(lines)
	for _, title := range opts.CompletionPanes {
		title = strings.TrimSpace(title)
		if title != "" {
			s.completionPanes[title] = ""
		}
	}
	return s
}

func makeCommands(lines []string) []*Command {
	var cmds []*Command
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmds = append(cmds, NewCommand(line))
	}
	return cmds
}

// Commands exposes the records for rendering. Callers must not reorder.
func (s *State) Commands() []*Command { return s.commands }

// Lines returns the command lines in order, used to serialize the list for
// live editing.
func (s *State) Lines() []string {
	lines := make([]string, len(s.commands))
	for i, c := range s.commands {
		lines[i] = c.Line
	}
	return lines
}

// RunningIndex is the sequencer's cursor, or -1 when nothing is running.
func (s *State) RunningIndex() int { return s.running }

// SelectedIndex is the user's selection, or -1 when nothing is selected.
func (s *State) SelectedIndex() int { return s.selected }

func (s *State) Paused() bool        { return s.paused }
func (s *State) StopOnFailure() bool { return s.stopFail }
func (s *State) Epoch() uint64       { return s.epoch }
func (s *State) EditPath() string    { return s.editPath }

// Selected returns the selected command, or nil.
func (s *State) Selected() *Command {
	if s.selected == none || s.selected >= len(s.commands) {
		return nil
	}
	return s.commands[s.selected]
}

// AllFinished reports whether every command reached a terminal state, by
// exiting or by having its session closed.
func (s *State) AllFinished() bool {
	for _, c := range s.commands {
		if !c.Exited() && !c.ClosedByUser() {
			return false
		}
	}
	return true
}

// AllSucceeded reports whether every command exited with status zero.
func (s *State) AllSucceeded() bool {
	for _, c := range s.commands {
		if !c.Succeeded() {
			return false
		}
	}
	return true
}

func (s *State) SuccessCount() int {
	n := 0
	for _, c := range s.commands {
		if c.Succeeded() {
			n++
		}
	}
	return n
}

func (s *State) FailureCount() int {
	n := 0
	for _, c := range s.commands {
		if c.Failed() {
			n++
		}
	}
	return n
}

func (s *State) PendingCount() int {
	n := 0
	for _, c := range s.commands {
		if !c.Exited() {
			n++
		}
	}
	return n
}

// TotalElapsed is the wall time from the first command starting to the last
// one ending, using now for whichever end is still open.
func (s *State) TotalElapsed(now time.Time) time.Duration {
	if len(s.commands) == 0 {
		return 0
	}
	start := s.commands[0].StartedAt
	if start.IsZero() {
		return 0
	}
	end := s.commands[len(s.commands)-1].EndedAt
	if end.IsZero() {
		end = now
	}
	return end.Sub(start)
}

// advanceEpoch supersedes every outstanding start-session request. Must be
// called before issuing requests for a new run.
func (s *State) advanceEpoch() uint64 {
	s.epoch++
	return s.epoch
}

func (s *State) corr(index int) host.Correlation {
	return host.Correlation{Index: index, Epoch: s.epoch}
}

// closeBoundSessions returns a CloseSession effect for every command with a live
// session handle.
func (s *State) closeBoundSessions() []Effect {
	var fx []Effect
	for _, c := range s.commands {
		if c.Session != "" {
			fx = append(fx, CloseSession{ID: c.Session})
		}
	}
	return fx
}
