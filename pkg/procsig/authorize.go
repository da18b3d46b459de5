// Package procsig decides whether a caller may signal a process and
// delivers the signal when it may.
package procsig

import "fmt"

// MinTargetPID is the lowest pid that may be signalled. pid 1 is init.
const MinTargetPID = 2

// Reason explains a denied Decision.
type Reason int

const (
	ReasonNone Reason = iota
	InvalidTarget
	NotAuthorized
)

func (r Reason) String() string {
	switch r {
	case InvalidTarget:
		return "invalid_target"
	case NotAuthorized:
		return "not_authorized"
	default:
		return "none"
	}
}

// Decision is the outcome of Authorize. The zero value allows.
type Decision struct {
	Reason Reason
	PID    int
}

// Allowed reports whether the signal may be delivered.
func (d Decision) Allowed() bool { return d.Reason == ReasonNone }

// Err maps a denial onto ErrInvalidTarget or ErrNotAuthorized, or returns
// nil when allowed.
func (d Decision) Err() error {
	switch d.Reason {
	case InvalidTarget:
		return fmt.Errorf("%w: pid %d", ErrInvalidTarget, d.PID)
	case NotAuthorized:
		return fmt.Errorf("%w: pid %d", ErrNotAuthorized, d.PID)
	default:
		return nil
	}
}

// Authorize applies the signalling rule in order: pids below MinTargetPID
// are invalid whoever asks; root may signal anything; anyone else may
// signal only processes they own. It makes no system calls.
func Authorize(callerUID, targetUID uint32, pid int) Decision {
	if pid < MinTargetPID {
		return Decision{Reason: InvalidTarget, PID: pid}
	}
	if callerUID == 0 || callerUID == targetUID {
		return Decision{PID: pid}
	}
	return Decision{Reason: NotAuthorized, PID: pid}
}
