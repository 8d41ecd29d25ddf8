package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/badri/runq/internal/config"
	"github.com/badri/runq/internal/editfile"
	"github.com/badri/runq/internal/events"
	"github.com/badri/runq/internal/history"
	"github.com/badri/runq/internal/host"
	runpkg "github.com/badri/runq/internal/run"
)

// Key bindings
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Focus       key.Binding
	Restart     key.Binding
	Pause       key.Binding
	StopFailure key.Binding
	Edit        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus/re-run"),
	),
	Restart: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "restart"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause after command"),
	),
	StopFailure: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "stop on failure"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit commands"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Messages
type beginMsg struct{}
type tickMsg time.Time
type hostEventMsg struct{ ev host.Event }

// Commands
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func listenHostCmd(h host.Host) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-h.Events()
		if !ok {
			return nil
		}
		return hostEventMsg{ev: ev}
	}
}

// Model
type runModel struct {
	cfg   *config.Config
	state *runpkg.State
	hst   host.Host
	evlog *events.Logger
	store *history.Store

	runID      string
	runStarted time.Time
	now        time.Time
	width      int
	height     int
	notice     string
	recorded   bool
	quitting   bool
}

func newRunModel(cfg *config.Config, st *runpkg.State, h host.Host, evlog *events.Logger, store *history.Store) runModel {
	return runModel{
		cfg:        cfg,
		state:      st,
		hst:        h,
		evlog:      evlog,
		store:      store,
		runID:      uuid.NewString(),
		runStarted: time.Now(),
		now:        time.Now(),
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return beginMsg{} },
		listenHostCmd(m.hst),
		tickCmd(),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case beginMsg:
		m.logErr(m.evlog.LogRunStarted(m.runID, m.state.Epoch(), len(m.state.Commands())))
		return m, m.applyEffects(m.state.Advance())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case hostEventMsg:
		cmd := m.handleHostEvent(msg.ev)
		return m, tea.Batch(cmd, listenHostCmd(m.hst))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *runModel) handleHostEvent(ev host.Event) tea.Cmd {
	switch ev := ev.(type) {
	case host.SessionOpened:
		m.state.HandleSessionOpened(ev.ID, ev.Corr, time.Now())

	case host.SessionExited:
		if ev.Corr.Epoch != m.state.Epoch() {
			m.logErr(m.evlog.Log(&events.Event{
				Type:  events.EventStaleDropped,
				RunID: m.runID,
				Epoch: ev.Corr.Epoch,
				Index: ev.Corr.Index,
			}))
		} else if line := m.lineAt(ev.Corr.Index); line != "" {
			m.logErr(m.evlog.LogCommandExited(m.runID, ev.Corr.Epoch, ev.Corr.Index, line, ev.ExitStatus))
		}
		return m.applyEffects(m.state.HandleSessionExited(ev.ID, ev.ExitStatus, ev.Corr, time.Now()))

	case host.SessionClosed:
		if m.state.HandleSessionClosed(ev.ID) {
			m.logErr(m.evlog.LogCommandClosed(m.runID, string(ev.ID)))
		}

	case host.EditClosed:
		if m.state.HandleEditClosed(ev.ID) {
			return m.reconcileEdit()
		}

	case host.Inventory:
		m.state.HandleInventory(ev.Panes)
	}
	return nil
}

// reconcileEdit reads the edited command list back and restarts the run
// under a new epoch. A read failure leaves the run untouched.
func (m *runModel) reconcileEdit() tea.Cmd {
	path := m.state.EditPath()
	lines, err := editfile.Read(path)
	if err != nil {
		log.Printf("live edit aborted: %v", err)
		m.notice = fmt.Sprintf("edit aborted: %v", err)
		return nil
	}
	m.finishRun(history.OutcomeEdited)
	fx := m.state.ReplaceCommands(lines)
	m.nextRun()
	m.logErr(m.evlog.LogRunEdited(m.runID, m.state.Epoch(), len(m.state.Commands())))
	if err := editfile.Remove(path); err != nil {
		log.Printf("removing edit file: %v", err)
	}
	return m.applyEffects(fx)
}

func (m runModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.finishRun(m.quitOutcome())
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Down):
		m.state.MoveSelectionDown()

	case key.Matches(msg, keys.Up):
		m.state.MoveSelectionUp()

	case key.Matches(msg, keys.Focus):
		return m, m.applyEffects(m.state.FocusSelected())

	case key.Matches(msg, keys.Restart):
		m.finishRun(history.OutcomeRestarted)
		fx := m.state.Restart()
		m.nextRun()
		m.logErr(m.evlog.LogRunRestarted(m.runID, m.state.Epoch()))
		return m, m.applyEffects(fx)

	case key.Matches(msg, keys.Pause):
		return m, m.applyEffects(m.state.TogglePause())

	case key.Matches(msg, keys.StopFailure):
		return m, m.applyEffects(m.state.ToggleStopOnFailure())

	case key.Matches(msg, keys.Edit):
		if err := editfile.Write(m.state.EditPath(), m.state.Lines()); err != nil {
			log.Printf("opening editor aborted: %v", err)
			m.notice = fmt.Sprintf("edit aborted: %v", err)
			return m, nil
		}
		return m, m.applyEffects(m.state.OpenEditor())
	}
	return m, nil
}

// applyEffects issues the state machine's requests against the host.
func (m *runModel) applyEffects(fx []runpkg.Effect) tea.Cmd {
	for _, e := range fx {
		var err error
		switch e := e.(type) {
		case runpkg.StartSession:
			m.logErr(m.evlog.LogCommandStarted(m.runID, e.Corr.Epoch, e.Corr.Index, e.Line))
			err = m.hst.StartSession(e.Line, e.Corr)
		case runpkg.CloseSession:
			err = m.hst.CloseSession(e.ID)
		case runpkg.FocusSession:
			err = m.hst.FocusSession(e.ID, e.FloatIfHidden)
		case runpkg.ShowSession:
			err = m.hst.ShowSession(e.ID, e.ForceFloat)
		case runpkg.HideSession:
			err = m.hst.HideSession(e.ID)
		case runpkg.RerunSession:
			err = m.hst.RerunSession(e.ID)
		case runpkg.OpenEditSurface:
			err = m.hst.OpenEditSurface(e.Path, e.Corr)
		case runpkg.CloseSelf:
			m.finishRun(history.OutcomeSuccess)
			m.quitting = true
			return tea.Quit
		}
		if err != nil {
			log.Printf("host request failed: %v", err)
			m.notice = err.Error()
		}
	}
	return nil
}

// finishRun records the current run once; restarts and edits begin a new one
// via nextRun.
func (m *runModel) finishRun(outcome history.Outcome) {
	if m.recorded {
		return
	}
	m.recorded = true
	m.logErr(m.evlog.LogRunCompleted(m.runID, string(outcome)))

	rec := &history.Run{
		ID:        m.runID,
		StartedAt: m.runStarted,
		EndedAt:   time.Now(),
		Outcome:   outcome,
	}
	for i, c := range m.state.Commands() {
		rec.Commands = append(rec.Commands, history.RunCommand{
			Index:      i,
			Line:       c.Line,
			ExitStatus: c.ExitStatus,
		})
	}
	if err := m.store.Record(rec); err != nil {
		log.Printf("recording run history: %v", err)
	}
}

// quitOutcome classifies the run the user is quitting out of: a run that
// already reached its end keeps its real outcome instead of "interrupted".
func (m *runModel) quitOutcome() history.Outcome {
	if !m.state.AllFinished() {
		return history.OutcomeInterrupted
	}
	if m.state.AllSucceeded() {
		return history.OutcomeSuccess
	}
	return history.OutcomeFailed
}

func (m *runModel) nextRun() {
	m.runID = uuid.NewString()
	m.runStarted = time.Now()
	m.recorded = false
}

func (m *runModel) lineAt(index int) string {
	cmds := m.state.Commands()
	if index < 0 || index >= len(cmds) {
		return ""
	}
	return cmds[index].Line
}

func (m *runModel) logErr(err error) {
	if err != nil {
		log.Printf("event log: %v", err)
	}
}

// cmdRun loads the config, connects to the session host and runs the TUI.
func cmdRun(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if os.Getenv("RUNQ_DEBUG") != "" {
		f, err := tea.LogToFile("runq-debug.log", "runq")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		// Diagnostics would corrupt the TUI; they only matter in debug runs.
		log.SetOutput(io.Discard)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return fmt.Errorf("locating data dir: %w", err)
	}
	evlog := events.NewLogger(dataDir)
	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	h := host.NewTmux(cfg.Shell, cfg.WorkDir())
	if err := h.Start(context.Background()); err != nil {
		return err
	}
	defer h.Close()

	st := runpkg.New(cfg.Commands, runpkg.Options{
		StopOnFailure:   cfg.StopOnFailure,
		CompletionPanes: cfg.PanesToRunOnCompletion,
		EditPath:        cfg.EditFilePath(editfile.DefaultName),
	})

	m := newRunModel(cfg, st, h, evlog, store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
