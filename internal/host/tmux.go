package host

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Tmux drives command sessions as tmux windows. Each command runs as the
// window's pane process with remain-on-exit set, so exit codes can be read
// from #{pane_dead_status} after the process finishes. A watcher goroutine
// per session polls #{pane_dead} and emits lifecycle events on the shared
// channel; a vanished pane (the user killed it) becomes SessionClosed.
type Tmux struct {
	shell   string
	workdir string

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// window hosting the runq TUI itself, used to step back from a
	// session we were asked to hide.
	selfWindow string

	pollInterval      time.Duration
	inventoryInterval time.Duration
}

// NewTmux builds a tmux host running commands with shell -ic in workdir.
func NewTmux(shell, workdir string) *Tmux {
	return &Tmux{
		shell:             shell,
		workdir:           workdir,
		events:            make(chan Event, 64),
		pollInterval:      250 * time.Millisecond,
		inventoryInterval: 2 * time.Second,
	}
}

func (t *Tmux) Events() <-chan Event { return t.events }

// Start verifies we are inside a reachable tmux server and begins the
// session inventory poller.
func (t *Tmux) Start(ctx context.Context) error {
	if os.Getenv("TMUX") == "" {
		return fmt.Errorf("runq must run inside a tmux session")
	}
	out, err := exec.Command("tmux", "display-message", "-p", "#{window_id}").Output()
	if err != nil {
		return fmt.Errorf("talking to tmux: %w", err)
	}
	t.selfWindow = strings.TrimSpace(string(out))

	t.ctx, t.cancel = context.WithCancel(ctx)
	t.wg.Add(1)
	go t.pollInventory()
	return nil
}

// Close stops watchers and closes the event channel. Sessions stay alive;
// the orchestrator closes those it owns explicitly.
func (t *Tmux) Close() error {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
	close(t.events)
	return nil
}

func (t *Tmux) emit(ev Event) {
	select {
	case t.events <- ev:
	case <-t.ctx.Done():
	}
}

// StartSession opens a detached window running shell -ic line and starts a
// watcher for its exit.
//
// The pane is spawned running the bare shell first and the command only
// started once remain-on-exit is in place: a fast command spawned directly
// can exit and take the pane with it before the option lands, losing the
// exit status entirely.
func (t *Tmux) StartSession(line string, corr Correlation) error {
	out, err := exec.Command("tmux",
		"new-window",
		"-d",
		"-P", "-F", "#{pane_id}",
		"-c", t.workdir,
		"-n", windowName(line),
		t.shell,
	).Output()
	if err != nil {
		return fmt.Errorf("opening command window: %w", err)
	}
	id := SessionID(strings.TrimSpace(string(out)))

	// Keep the pane around after exit so the status can be read and the
	// output inspected.
	if err := exec.Command("tmux", "set-option", "-p", "-t", string(id), "remain-on-exit", "on").Run(); err != nil {
		return fmt.Errorf("setting remain-on-exit: %w", err)
	}
	// respawn-pane remembers this command, so a later RerunSession without
	// arguments runs the same line again.
	if err := exec.Command("tmux", "respawn-pane", "-k", "-t", string(id), t.shell, "-ic", line).Run(); err != nil {
		return fmt.Errorf("starting command: %w", err)
	}

	t.emit(SessionOpened{ID: id, Corr: corr})
	t.wg.Add(1)
	go t.watchSession(id, corr)
	return nil
}

// watchSession polls the pane for the life of the session. An exit is
// reported once per process run; the watcher then keeps going so that the
// user destroying the dead pane still surfaces as SessionClosed, and a
// respawned pane reports its next exit.
func (t *Tmux) watchSession(id SessionID, corr Correlation) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	reported := false
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
		}
		dead, err := paneFormat(id, "#{pane_dead}")
		if err != nil {
			// Pane is gone: the user closed it, whether or not its
			// process had already exited.
			t.emit(SessionClosed{ID: id})
			return
		}
		if dead != "1" {
			reported = false
			continue
		}
		if reported {
			continue
		}
		var status *int
		if raw, err := paneFormat(id, "#{pane_dead_status}"); err == nil {
			status = parseExitStatus(raw)
		}
		t.emit(SessionExited{ID: id, ExitStatus: status, Corr: corr})
		reported = true
	}
}

// parseExitStatus interprets #{pane_dead_status}. It is empty when the
// process was killed by a signal, in which case no code is known.
func parseExitStatus(raw string) *int {
	if raw == "" {
		return nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &code
}

func (t *Tmux) CloseSession(id SessionID) error {
	if err := exec.Command("tmux", "kill-pane", "-t", string(id)).Run(); err != nil {
		return fmt.Errorf("closing session %s: %w", id, err)
	}
	return nil
}

func (t *Tmux) FocusSession(id SessionID, floatIfHidden bool) error {
	// tmux has no floating panes; focusing always raises the window.
	if err := exec.Command("tmux", "select-window", "-t", string(id)).Run(); err != nil {
		return fmt.Errorf("focusing session %s: %w", id, err)
	}
	return exec.Command("tmux", "select-pane", "-t", string(id)).Run()
}

func (t *Tmux) RerunSession(id SessionID) error {
	if err := exec.Command("tmux", "respawn-pane", "-k", "-t", string(id)).Run(); err != nil {
		return fmt.Errorf("rerunning session %s: %w", id, err)
	}
	return nil
}

func (t *Tmux) ShowSession(id SessionID, forceFloat bool) error {
	return t.FocusSession(id, forceFloat)
}

// HideSession steps back to the orchestrator's own window when the target is
// frontmost. Background windows are already hidden in tmux terms.
func (t *Tmux) HideSession(id SessionID) error {
	active, err := paneFormat(id, "#{window_active}")
	if err != nil || active != "1" {
		return nil
	}
	return exec.Command("tmux", "select-window", "-t", t.selfWindow).Run()
}

// OpenEditSurface opens $EDITOR on path in a foreground window and watches
// for it closing.
func (t *Tmux) OpenEditSurface(path string, corr Correlation) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	out, err := exec.Command("tmux",
		"new-window",
		"-P", "-F", "#{pane_id}",
		"-c", t.workdir,
		"-n", "runq-edit",
		t.shell, "-ic", fmt.Sprintf("%s %s", editor, shellQuote(path)),
	).Output()
	if err != nil {
		return fmt.Errorf("opening edit window: %w", err)
	}
	id := SessionID(strings.TrimSpace(string(out)))

	t.emit(SessionOpened{ID: id, Corr: corr})
	t.wg.Add(1)
	go t.watchEdit(id)
	return nil
}

func (t *Tmux) watchEdit(id SessionID) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
		}
		dead, err := paneFormat(id, "#{pane_dead}")
		if err != nil || dead == "1" {
			t.emit(EditClosed{ID: id})
			return
		}
	}
}

// pollInventory periodically reports every live pane's title and handle so
// the sequencer can resolve completion-pane targets it did not start itself.
func (t *Tmux) pollInventory() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.inventoryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
		}
		out, err := exec.Command("tmux", "list-panes", "-a", "-F", "#{pane_title}\t#{pane_id}").Output()
		if err != nil {
			continue
		}
		if panes := parseInventory(string(out)); len(panes) > 0 {
			t.emit(Inventory{Panes: panes})
		}
	}
}

func parseInventory(out string) []PaneInfo {
	var panes []PaneInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		title, id, ok := strings.Cut(line, "\t")
		if !ok || id == "" {
			continue
		}
		panes = append(panes, PaneInfo{Title: title, ID: SessionID(id)})
	}
	return panes
}

func paneFormat(id SessionID, format string) (string, error) {
	out, err := exec.Command("tmux", "display-message", "-p", "-t", string(id), format).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// windowName derives a short window title from the command line.
func windowName(line string) string {
	name := []rune(line)
	if len(name) > 20 {
		name = name[:20]
	}
	return "runq:" + string(name)
}

func shellQuote(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
