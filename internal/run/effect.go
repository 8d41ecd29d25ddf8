package run

import "github.com/badri/runq/internal/host"

// Effect is a side-effecting request the state machine wants issued against
// the session host. Handlers return effects instead of performing I/O so the
// sequencing logic stays synchronous and testable; the caller applies them
// in order.
type Effect interface{ isEffect() }

// StartSession asks the host to spawn a session running Line, stamped with
// the correlation the host must echo back on every event for that session.
type StartSession struct {
	Line string
	Corr host.Correlation
}

type CloseSession struct {
	ID host.SessionID
}

type FocusSession struct {
	ID            host.SessionID
	FloatIfHidden bool
}

type ShowSession struct {
	ID         host.SessionID
	ForceFloat bool
}

type HideSession struct {
	ID host.SessionID
}

type RerunSession struct {
	ID host.SessionID
}

type OpenEditSurface struct {
	Path string
	Corr host.Correlation
}

// CloseSelf signals that the run completed successfully and the orchestrator
// should shut itself down.
type CloseSelf struct{}

func (StartSession) isEffect()    {}
func (CloseSession) isEffect()    {}
func (FocusSession) isEffect()    {}
func (ShowSession) isEffect()     {}
func (HideSession) isEffect()     {}
func (RerunSession) isEffect()    {}
func (OpenEditSurface) isEffect() {}
func (CloseSelf) isEffect()       {}
