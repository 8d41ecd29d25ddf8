package run

import "github.com/badri/runq/internal/host"

// OpenEditor asks the host to open the live-edit artifact in an edit surface.
// The caller must have written the artifact first; a write failure means the
// editor is never opened.
func (s *State) OpenEditor() []Effect {
	return []Effect{OpenEditSurface{
		Path: s.editPath,
		Corr: host.Correlation{Edit: true, Epoch: s.epoch},
	}}
}

// ReplaceCommands swaps in a freshly edited command list and restarts the run
// under a new epoch: every owned session is closed, the cursor clears, and
// the sequence starts from the new first command.
func (s *State) ReplaceCommands(lines []string) []Effect {
	fx := s.closeBoundSessions()
	s.commands = makeCommands(lines)
	if s.selected >= len(s.commands) {
		s.selected = none
	}
	s.running = none
	s.advanceEpoch()
	return append(fx, s.Advance()...)
}
