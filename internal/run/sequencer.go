package run

import "sort"

// Advance is the central decision procedure. It is invoked after load, after
// any completion event for the running command, after unpausing, after
// turning off stop-on-failure, and after restart or live edit. It either
// starts the next pending command, halts on failure, or finishes the run.
//
// Deterministic: the outcome depends only on paused, stop-on-failure and the
// current command states.
func (s *State) Advance() []Effect {
	if s.paused {
		return nil
	}
	if s.running != none {
		cur := s.commands[s.running]
		if !cur.Exited() {
			// Still running, or reset after the user closed its
			// session. The cursor stays put until an exit event
			// arrives or the user reruns/restarts.
			return nil
		}
		if s.stopFail && !cur.Succeeded() {
			return s.triage()
		}
	}
	next := s.running + 1
	if next < len(s.commands) {
		cmd := s.commands[next]
		s.running = next
		return []Effect{StartSession{Line: cmd.Line, Corr: s.corr(next)}}
	}
	s.running = none
	if s.AllSucceeded() {
		return s.completion()
	}
	return s.triage()
}

// completion ends a fully successful run: rerun the configured completion
// panes, close every session this run owns, then shut down.
func (s *State) completion() []Effect {
	var fx []Effect
	titles := make([]string, 0, len(s.completionPanes))
	for title := range s.completionPanes {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		if id := s.completionPanes[title]; id != "" {
			fx = append(fx, RerunSession{ID: id})
		}
	}
	fx = append(fx, s.closeBoundSessions()...)
	fx = append(fx, CloseSelf{})
	return fx
}

// triage is the failure view: reveal every failed session and hide the rest,
// so the user can inspect what went wrong.
func (s *State) triage() []Effect {
	var fx []Effect
	for _, c := range s.commands {
		if c.Session == "" {
			continue
		}
		if c.ExitStatus != nil && *c.ExitStatus != 0 {
			fx = append(fx, ShowSession{ID: c.Session, ForceFloat: true})
			continue
		}
		fx = append(fx, HideSession{ID: c.Session})
	}
	return fx
}
