package run

import "testing"

func TestSelection_WrapsToNone(t *testing.T) {
	s := New([]string{"a", "b"}, Options{})

	if s.SelectedIndex() != none {
		t.Fatalf("initial selection = %d, want none", s.SelectedIndex())
	}

	// Down: none -> 0 -> 1 -> none
	s.MoveSelectionDown()
	if s.SelectedIndex() != 0 {
		t.Errorf("down from none = %d, want 0", s.SelectedIndex())
	}
	s.MoveSelectionDown()
	s.MoveSelectionDown()
	if s.SelectedIndex() != none {
		t.Errorf("down past last = %d, want none", s.SelectedIndex())
	}

	// Up: none -> 1 -> 0 -> none
	s.MoveSelectionUp()
	if s.SelectedIndex() != 1 {
		t.Errorf("up from none = %d, want last", s.SelectedIndex())
	}
	s.MoveSelectionUp()
	if s.SelectedIndex() != 0 {
		t.Errorf("up = %d, want 0", s.SelectedIndex())
	}
	s.MoveSelectionUp()
	if s.SelectedIndex() != none {
		t.Errorf("up past first = %d, want none", s.SelectedIndex())
	}
}

func TestSelection_EmptyList(t *testing.T) {
	s := New(nil, Options{})
	s.MoveSelectionDown()
	if s.SelectedIndex() != none {
		t.Error("selection moved on an empty list")
	}
	s.MoveSelectionUp()
	if s.SelectedIndex() != none {
		t.Error("selection moved on an empty list")
	}
}

func TestFocusSelected_BoundSessionFocuses(t *testing.T) {
	s := New([]string{"a"}, Options{})
	st := startOf(t, s.Advance())
	open(t, s, st, "%1")
	s.MoveSelectionDown()

	fx := s.FocusSelected()
	if len(fx) != 1 {
		t.Fatalf("effects = %#v, want a single focus", fx)
	}
	f, ok := fx[0].(FocusSession)
	if !ok {
		t.Fatalf("effect = %#v, want FocusSession", fx[0])
	}
	if f.ID != "%1" || !f.FloatIfHidden {
		t.Errorf("focus = %+v, want %%1 with float-if-hidden", f)
	}
}

func TestFocusSelected_NothingSelected(t *testing.T) {
	s := New([]string{"a"}, Options{})
	if fx := s.FocusSelected(); fx != nil {
		t.Fatalf("effects = %#v, want none", fx)
	}
}

func TestFocusSelected_DoesNotMoveCursor(t *testing.T) {
	s := New([]string{"a", "b", "c"}, Options{})
	st0 := startOf(t, s.Advance())
	open(t, s, st0, "%1")

	// Select and rerun the pending third command while index 0 runs.
	s.MoveSelectionUp() // selects last
	st := startOf(t, s.FocusSelected())
	if st.Corr.Index != 2 {
		t.Fatalf("manual start index = %d, want 2", st.Corr.Index)
	}
	if s.RunningIndex() != 0 {
		t.Errorf("running index = %d, manual rerun must not move it", s.RunningIndex())
	}
}

func TestToggleStopOnFailure_ResumesWhenDisabled(t *testing.T) {
	s := New([]string{"a", "b"}, Options{StopOnFailure: true})
	st0 := startOf(t, s.Advance())
	open(t, s, st0, "%1")
	exit(s, st0, "%1", intp(1)) // halts in triage

	if !s.Commands()[1].StartedAt.IsZero() {
		t.Fatal("index 1 started despite stop-on-failure")
	}
	fx := s.ToggleStopOnFailure()
	if s.StopOnFailure() {
		t.Fatal("flag did not flip")
	}
	st1 := startOf(t, fx)
	if st1.Corr.Index != 1 {
		t.Errorf("resume started index %d, want 1", st1.Corr.Index)
	}
}

func TestTogglePause_NoResumeWhenAllFinished(t *testing.T) {
	s := New([]string{"a"}, Options{})
	st := startOf(t, s.Advance())
	open(t, s, st, "%1")
	exit(s, st, "%1", intp(1))

	s.TogglePause()
	if fx := s.TogglePause(); len(fx) != 0 {
		t.Fatalf("unpause advanced a finished run: %#v", fx)
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	build := func() *State {
		s := New([]string{"a", "b", "c"}, Options{})
		st0 := startOf(t, s.Advance())
		open(t, s, st0, "%1")
		exit(s, st0, "%1", intp(0))
		return s
	}
	a, b := build(), build()
	if a.RunningIndex() != b.RunningIndex() {
		t.Errorf("identical inputs diverged: %d vs %d", a.RunningIndex(), b.RunningIndex())
	}
}
