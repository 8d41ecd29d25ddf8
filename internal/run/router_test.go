package run

import (
	"testing"
	"time"

	"github.com/badri/runq/internal/host"
)

func TestHandleSessionOpened_StaleEpochIgnored(t *testing.T) {
	s := New([]string{"a"}, Options{})
	startOf(t, s.Advance())

	ok := s.HandleSessionOpened("%1", host.Correlation{Index: 0, Epoch: s.Epoch() + 1}, time.Now())
	if ok {
		t.Fatal("stale session-opened was applied")
	}
	cmd := s.Commands()[0]
	if cmd.Session != "" || !cmd.StartedAt.IsZero() {
		t.Error("stale event mutated the command record")
	}
}

func TestHandleSessionOpened_OutOfRangeIndexIgnored(t *testing.T) {
	s := New([]string{"a"}, Options{})
	startOf(t, s.Advance())

	if s.HandleSessionOpened("%1", host.Correlation{Index: 7, Epoch: s.Epoch()}, time.Now()) {
		t.Fatal("out-of-range session-opened was applied")
	}
}

func TestHandleSessionOpened_RerunClearsEndTime(t *testing.T) {
	s := New([]string{"a"}, Options{})
	st := startOf(t, s.Advance())
	open(t, s, st, "%1")
	exit(s, st, "%1", intp(1))

	cmd := s.Commands()[0]
	if cmd.EndedAt.IsZero() {
		t.Fatal("exit did not stamp end time")
	}

	// The host reruns the session; a fresh opened event arrives.
	open(t, s, st, "%1")
	if !cmd.EndedAt.IsZero() {
		t.Error("rerun did not clear end time")
	}
	if cmd.ExitStatus != nil {
		t.Error("rerun kept the previous exit status")
	}
	if !cmd.Running() {
		t.Errorf("phase = %s, want running", cmd.Phase)
	}
}

func TestHandleSessionExited_NoCodeIsNeverSuccess(t *testing.T) {
	s := New([]string{"a"}, Options{})
	st := startOf(t, s.Advance())
	open(t, s, st, "%1")

	fx := exit(s, st, "%1", nil) // killed: exited with no code

	cmd := s.Commands()[0]
	if !cmd.Exited() {
		t.Error("command not marked exited")
	}
	if cmd.Succeeded() {
		t.Error("exited-with-no-code counted as success")
	}
	_, _, _, _, closeSelf := countEffects(fx)
	if closeSelf != 0 {
		t.Error("run completed despite a codeless exit")
	}
}

func TestHandleSessionClosed_UnknownHandle(t *testing.T) {
	s := New([]string{"a"}, Options{})
	if s.HandleSessionClosed("%99") {
		t.Fatal("unknown handle matched a command")
	}
}

func TestHandleInventory_RecordsOnlyConfiguredTitles(t *testing.T) {
	s := New([]string{"a"}, Options{CompletionPanes: []string{"server"}})
	s.HandleInventory([]host.PaneInfo{
		{Title: "other", ID: "%1"},
		{Title: "server", ID: "%2"},
	})

	if got := s.completionPanes["server"]; got != "%2" {
		t.Errorf("server handle = %q, want %%2", got)
	}
	if _, ok := s.completionPanes["other"]; ok {
		t.Error("unconfigured title was recorded")
	}
}

func TestHandleEditClosed(t *testing.T) {
	s := New([]string{"a"}, Options{EditPath: "/tmp/x"})
	s.HandleSessionOpened("%7", host.Correlation{Edit: true}, time.Now())

	if s.HandleEditClosed("%8") {
		t.Error("foreign session treated as the edit surface")
	}
	if !s.HandleEditClosed("%7") {
		t.Error("edit surface close not recognized")
	}
	if s.HandleEditClosed("%7") {
		t.Error("edit surface close recognized twice")
	}
}

func TestCommandReset_Idempotent(t *testing.T) {
	c := NewCommand("make test")
	c.Session = "%5"
	c.StartedAt = time.Now()
	c.EndedAt = time.Now()
	c.ExitStatus = intp(2)
	c.Phase = PhaseExited

	c.Reset()
	c.Reset()

	if c.Line != "make test" {
		t.Errorf("line = %q, want preserved", c.Line)
	}
	if c.Phase != PhasePending || c.Session != "" || c.ExitStatus != nil ||
		!c.StartedAt.IsZero() || !c.EndedAt.IsZero() {
		t.Errorf("reset left residue: %+v", c)
	}
}
