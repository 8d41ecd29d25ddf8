package run

import (
	"log"
	"time"

	"github.com/badri/runq/internal/host"
)

// The router correlates host lifecycle events back to command records. Every
// event carries the correlation stamped on the originating request; a stale
// epoch means the event belongs to a superseded run and must not touch state.

// HandleSessionOpened binds the confirmed session handle to its command and
// stamps the start time. Returns true when state changed and a render is due.
func (s *State) HandleSessionOpened(id host.SessionID, corr host.Correlation, now time.Time) bool {
	if corr.Edit {
		s.editSessions[id] = struct{}{}
		return false
	}
	if corr.Epoch != s.epoch {
		log.Printf("run: ignoring session-opened from superseded run (epoch %d, current %d)", corr.Epoch, s.epoch)
		return false
	}
	if corr.Index < 0 || corr.Index >= len(s.commands) {
		log.Printf("run: ignoring session-opened with out-of-range index %d", corr.Index)
		return false
	}
	cmd := s.commands[corr.Index]
	cmd.Session = id
	cmd.StartedAt = now
	cmd.EndedAt = time.Time{} // a rerun reuses the record
	cmd.ExitStatus = nil
	cmd.Phase = PhaseRunning
	return true
}

// HandleSessionExited records the completion of a command session. When the
// exited command is the sequencer's cursor, the sequence advances. When it
// is not (a manual out-of-sequence rerun) and its exit makes every command
// successful, the run completes directly.
func (s *State) HandleSessionExited(id host.SessionID, exitStatus *int, corr host.Correlation, now time.Time) []Effect {
	if corr.Edit {
		return nil
	}
	if corr.Epoch != s.epoch {
		log.Printf("run: ignoring session-exited from superseded run (epoch %d, current %d)", corr.Epoch, s.epoch)
		return nil
	}
	if corr.Index < 0 || corr.Index >= len(s.commands) {
		log.Printf("run: ignoring session-exited with out-of-range index %d", corr.Index)
		return nil
	}
	cmd := s.commands[corr.Index]
	if id != "" {
		cmd.Session = id
	}
	cmd.ExitStatus = exitStatus
	cmd.Phase = PhaseExited
	cmd.EndedAt = now
	if s.running == corr.Index {
		return s.Advance()
	}
	if s.AllSucceeded() {
		return s.completion()
	}
	return nil
}

// HandleSessionClosed handles a session destroyed by the user rather than by
// its process exiting. The bound command is reset and marked closed; the
// sequence does not advance past it until the user reruns it or restarts.
func (s *State) HandleSessionClosed(id host.SessionID) bool {
	for _, cmd := range s.commands {
		if cmd.Session == id {
			cmd.Reset()
			cmd.Phase = PhaseClosedByUser
			return true
		}
	}
	return false
}

// HandleEditClosed reports whether the closed session was our live-edit
// surface; the caller then runs reconciliation. The handle is forgotten
// either way.
func (s *State) HandleEditClosed(id host.SessionID) bool {
	if _, ok := s.editSessions[id]; !ok {
		return false
	}
	delete(s.editSessions, id)
	return true
}

// HandleInventory records handles for any session whose title matches a
// configured completion pane, so run completion can target sessions this
// orchestrator never started.
func (s *State) HandleInventory(panes []host.PaneInfo) {
	for _, p := range panes {
		if _, ok := s.completionPanes[p.Title]; ok {
			s.completionPanes[p.Title] = p.ID
		}
	}
}
