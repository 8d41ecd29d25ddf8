package run

// MoveSelectionDown moves the selection one command down. Moving past the
// last command deselects; selecting from "none" picks the first.
func (s *State) MoveSelectionDown() {
	switch {
	case s.selected == none && len(s.commands) > 0:
		s.selected = 0
	case s.selected >= 0 && s.selected < len(s.commands)-1:
		s.selected++
	default:
		s.selected = none
	}
}

// MoveSelectionUp moves the selection one command up. Moving past the first
// command deselects; selecting from "none" picks the last.
func (s *State) MoveSelectionUp() {
	switch {
	case s.selected == none && len(s.commands) > 0:
		s.selected = len(s.commands) - 1
	case s.selected > 0:
		s.selected--
	default:
		s.selected = none
	}
}

// FocusSelected brings the selected command's session to the foreground, or,
// when it has none, reruns it in a fresh session under the current epoch.
// A manual rerun does not move the sequencer's cursor.
func (s *State) FocusSelected() []Effect {
	cmd := s.Selected()
	if cmd == nil {
		return nil
	}
	if cmd.Session != "" {
		return []Effect{FocusSession{ID: cmd.Session, FloatIfHidden: true}}
	}
	cmd.Reset()
	return []Effect{StartSession{Line: cmd.Line, Corr: s.corr(s.selected)}}
}

// TogglePause flips the pause flag. Unpausing resumes the sequence.
func (s *State) TogglePause() []Effect {
	s.paused = !s.paused
	if !s.paused && !s.AllFinished() {
		return s.Advance()
	}
	return nil
}

// ToggleStopOnFailure flips the stop-on-failure flag. Disabling it resumes a
// sequence halted on a failure.
func (s *State) ToggleStopOnFailure() []Effect {
	s.stopFail = !s.stopFail
	if !s.stopFail && !s.AllFinished() {
		return s.Advance()
	}
	return nil
}

// Restart tears the whole run down and starts over under a new epoch. Any
// in-flight event from the old run will arrive with a stale epoch and be
// discarded.
func (s *State) Restart() []Effect {
	fx := s.closeBoundSessions()
	for _, cmd := range s.commands {
		cmd.Reset()
	}
	s.running = none
	s.advanceEpoch()
	return append(fx, s.Advance()...)
}
