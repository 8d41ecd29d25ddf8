//go:build integration

package integration

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/badri/runq/internal/host"
)

// TestIntegration_SessionLifecycle drives a real tmux server through the
// host contract: start a session, observe it open and exit with its code.
// Run inside tmux with: go test -tags=integration ./test/integration/...
func TestIntegration_SessionLifecycle(t *testing.T) {
	requireTmux(t)

	h := host.NewTmux("sh", t.TempDir())
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()

	corr := host.Correlation{Index: 0, Epoch: 1}
	if err := h.StartSession("exit 3", corr); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	var id host.SessionID
	opened := waitFor(t, h, 5*time.Second, func(ev host.Event) bool {
		o, ok := ev.(host.SessionOpened)
		if ok {
			id = o.ID
		}
		return ok
	})
	o := opened.(host.SessionOpened)
	if o.Corr != corr {
		t.Errorf("opened correlation = %+v, want %+v", o.Corr, corr)
	}

	exited := waitFor(t, h, 10*time.Second, func(ev host.Event) bool {
		_, ok := ev.(host.SessionExited)
		return ok
	})
	e := exited.(host.SessionExited)
	if e.ID != id {
		t.Errorf("exited session = %s, want %s", e.ID, id)
	}
	if e.Corr != corr {
		t.Errorf("exited correlation = %+v, want %+v", e.Corr, corr)
	}
	if e.ExitStatus == nil || *e.ExitStatus != 3 {
		t.Errorf("exit status = %v, want 3", e.ExitStatus)
	}

	if err := h.CloseSession(id); err != nil {
		t.Errorf("CloseSession failed: %v", err)
	}
}

// TestIntegration_InstantExit starts a command that exits faster than any
// follow-up tmux call could run and still expects the full lifecycle: the
// pane must outlive its process so the status can be read.
func TestIntegration_InstantExit(t *testing.T) {
	requireTmux(t)

	h := host.NewTmux("sh", t.TempDir())
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()

	if err := h.StartSession("exit 1", host.Correlation{Index: 0, Epoch: 1}); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	waitFor(t, h, 5*time.Second, func(ev host.Event) bool {
		_, ok := ev.(host.SessionOpened)
		return ok
	})
	exited := waitFor(t, h, 10*time.Second, func(ev host.Event) bool {
		_, ok := ev.(host.SessionExited)
		return ok
	})
	e := exited.(host.SessionExited)
	if e.ExitStatus == nil || *e.ExitStatus != 1 {
		t.Errorf("exit status = %v, want 1", e.ExitStatus)
	}
	if err := h.CloseSession(e.ID); err != nil {
		t.Errorf("CloseSession failed: %v", err)
	}
}

// TestIntegration_KillExitedPane destroys a pane whose process has already
// exited; the watcher must still report the pane's disappearance.
func TestIntegration_KillExitedPane(t *testing.T) {
	requireTmux(t)

	h := host.NewTmux("sh", t.TempDir())
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()

	if err := h.StartSession("exit 1", host.Correlation{Index: 0, Epoch: 1}); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	var id host.SessionID
	waitFor(t, h, 10*time.Second, func(ev host.Event) bool {
		e, ok := ev.(host.SessionExited)
		if ok {
			id = e.ID
		}
		return ok
	})

	// The user closes the dead pane after inspecting its output.
	if err := exec.Command("tmux", "kill-pane", "-t", string(id)).Run(); err != nil {
		t.Fatalf("kill-pane failed: %v", err)
	}
	closed := waitFor(t, h, 10*time.Second, func(ev host.Event) bool {
		c, ok := ev.(host.SessionClosed)
		return ok && c.ID == id
	})
	if closed == nil {
		t.Fatal("no SessionClosed event for the killed pane")
	}
}

// TestIntegration_UserClosedSession kills a running session's pane out from
// under the watcher and expects a SessionClosed event.
func TestIntegration_UserClosedSession(t *testing.T) {
	requireTmux(t)

	h := host.NewTmux("sh", t.TempDir())
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()

	if err := h.StartSession("sleep 60", host.Correlation{Index: 0, Epoch: 1}); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	var id host.SessionID
	waitFor(t, h, 5*time.Second, func(ev host.Event) bool {
		o, ok := ev.(host.SessionOpened)
		if ok {
			id = o.ID
		}
		return ok
	})

	// Simulate the user closing the pane.
	if err := exec.Command("tmux", "kill-pane", "-t", string(id)).Run(); err != nil {
		t.Fatalf("kill-pane failed: %v", err)
	}

	closed := waitFor(t, h, 10*time.Second, func(ev host.Event) bool {
		c, ok := ev.(host.SessionClosed)
		return ok && c.ID == id
	})
	if closed == nil {
		t.Fatal("no SessionClosed event for the killed pane")
	}
}

func requireTmux(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not available, skipping integration test")
	}
	if os.Getenv("TMUX") == "" {
		t.Skip("not inside a tmux session, skipping integration test")
	}
}

// waitFor drains host events until match returns true or the timeout hits.
func waitFor(t *testing.T, h host.Host, timeout time.Duration, match func(host.Event) bool) host.Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-h.Events():
			if !ok {
				t.Fatal("event channel closed")
			}
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for host event")
		}
	}
}
