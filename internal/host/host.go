// Package host abstracts the terminal session host that actually spawns,
// displays and closes command sessions. The orchestrator never blocks on a
// session: every method is a fire-and-forget request, and results come back
// later on the Events channel, correlated through the Correlation record
// embedded in the original request.
package host

import "context"

// SessionID is the host's opaque handle for a live session. For the tmux
// implementation it is a pane id such as "%12".
type SessionID string

// Correlation is attached to every start-session request and echoed back
// verbatim on the events the host emits for that session. Index and Epoch
// identify which command of which run a late event belongs to; Edit marks
// the live-edit surface so its close event is distinguishable from ordinary
// command sessions.
type Correlation struct {
	Index int
	Epoch uint64
	Edit  bool
}

// PaneInfo is one entry of a session inventory report.
type PaneInfo struct {
	Title string
	ID    SessionID
}

// Event is a lifecycle notification from the host.
type Event interface{ isEvent() }

// SessionOpened reports that a previously requested session is now live.
type SessionOpened struct {
	ID   SessionID
	Corr Correlation
}

// SessionExited reports that the session's process finished. ExitStatus is
// nil when the host could not determine a code (e.g. the process was killed).
type SessionExited struct {
	ID         SessionID
	ExitStatus *int
	Corr       Correlation
}

// SessionClosed reports that the session was destroyed by the user rather
// than by its process exiting.
type SessionClosed struct {
	ID SessionID
}

// EditClosed reports that the live-edit surface was closed.
type EditClosed struct {
	ID SessionID
}

// Inventory reports all sessions the host currently knows about.
type Inventory struct {
	Panes []PaneInfo
}

func (SessionOpened) isEvent() {}
func (SessionExited) isEvent() {}
func (SessionClosed) isEvent() {}
func (EditClosed) isEvent()    {}
func (Inventory) isEvent()     {}

// Host is the session host contract. Implementations must deliver every
// lifecycle result on Events rather than through return values; errors
// returned by the request methods cover only the failure to issue the
// request itself.
type Host interface {
	// Start verifies the host is reachable and begins delivering events.
	Start(ctx context.Context) error
	Events() <-chan Event

	StartSession(line string, corr Correlation) error
	CloseSession(id SessionID) error
	FocusSession(id SessionID, floatIfHidden bool) error
	RerunSession(id SessionID) error
	ShowSession(id SessionID, forceFloat bool) error
	HideSession(id SessionID) error
	OpenEditSurface(path string, corr Correlation) error

	// Close stops event delivery and releases host resources. It does not
	// close sessions; callers close those explicitly.
	Close() error
}
