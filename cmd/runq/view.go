package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	flagOnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func (m runModel) View() string {
	if m.quitting {
		return ""
	}

	var s string
	s += m.viewTitle() + "\n\n"

	for i := range m.state.Commands() {
		selected := i == m.state.SelectedIndex()
		line := m.viewCommand(i)
		if selected {
			s += selectedStyle.Render("> "+line) + "\n"
			s += m.viewCommandDetail(i)
		} else {
			s += "  " + line + "\n"
		}
	}

	s += "\n" + m.viewStatus() + "\n"
	if m.notice != "" {
		s += noticeStyle.Render(m.notice) + "\n"
	}
	s += "\n" + m.viewHelp()
	return s
}

func (m runModel) viewTitle() string {
	success := m.state.SuccessCount()
	failure := m.state.FailureCount()
	pending := m.state.PendingCount()
	counts := fmt.Sprintf("(Success: %s, Failure: %s, Pending: %s)",
		successStyle.Render(fmt.Sprintf("%d", success)),
		failureStyle.Render(fmt.Sprintf("%d", failure)),
		runningStyle.Render(fmt.Sprintf("%d", pending)))

	if idx := m.state.RunningIndex(); idx >= 0 {
		return titleStyle.Render(fmt.Sprintf("Running %d/%d commands", idx+1, len(m.state.Commands()))) + " " + counts
	}
	if m.state.AllFinished() {
		return titleStyle.Render("Done running commands.") + " " + counts
	}
	return titleStyle.Render("Running commands.") + " " + counts
}

func (m runModel) viewCommand(i int) string {
	cmd := m.state.Commands()[i]
	switch {
	case cmd.Running():
		return fmt.Sprintf("%s %s", normalStyle.Render(cmd.Line),
			runningStyle.Render(fmt.Sprintf("(Running for %ds)", int(cmd.Elapsed(m.now).Seconds()))))
	case cmd.ExitStatus != nil:
		st := successStyle
		if *cmd.ExitStatus != 0 {
			st = failureStyle
		}
		return fmt.Sprintf("%s %s", normalStyle.Render(cmd.Line),
			st.Render(fmt.Sprintf("[EXIT CODE: %d]", *cmd.ExitStatus)))
	case cmd.Exited():
		return fmt.Sprintf("%s %s", normalStyle.Render(cmd.Line), failureStyle.Render("[EXITED]"))
	case cmd.ClosedByUser():
		return fmt.Sprintf("%s %s", normalStyle.Render(cmd.Line), failureStyle.Render("[CLOSED]"))
	default:
		return normalStyle.Render(cmd.Line)
	}
}

func (m runModel) viewCommandDetail(i int) string {
	cmd := m.state.Commands()[i]
	var s string
	elapsed := int(cmd.Elapsed(m.now).Seconds())
	if cmd.Running() {
		s += helpStyle.Render(fmt.Sprintf("    Running for: %ds", elapsed)) + "\n"
	} else {
		s += helpStyle.Render(fmt.Sprintf("    Done after: %ds", elapsed)) + "\n"
	}
	if cmd.Session != "" {
		s += helpStyle.Render("    <TAB> - open terminal") + "\n"
	} else {
		s += helpStyle.Render("    <TAB> - re-run in new terminal") + "\n"
	}
	return s
}

func (m runModel) viewStatus() string {
	parts := []string{
		fmt.Sprintf("Elapsed: %ds", int(m.state.TotalElapsed(m.now)/time.Second)),
		fmt.Sprintf("Shell: %s", m.cfg.Shell),
		fmt.Sprintf("Folder: %s", m.cfg.Folder),
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}

func (m runModel) viewHelp() string {
	pause := "SPACE pause after command"
	if m.state.Paused() {
		pause = flagOnStyle.Render(pause)
	} else {
		pause = helpStyle.Render(pause)
	}
	stop := "f stop on failure"
	if m.state.StopOnFailure() {
		stop = flagOnStyle.Render(stop)
	} else {
		stop = helpStyle.Render(stop)
	}
	lines := []string{
		helpStyle.Render("↑/↓ select   TAB focus/re-run   ENTER restart"),
		pause + "   " + stop,
		helpStyle.Render("e edit commands   q quit"),
	}
	return strings.Join(lines, "\n")
}
