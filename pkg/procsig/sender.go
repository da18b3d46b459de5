//go:build linux

package procsig

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/ja7ad/taskmon/pkg/process"
)

// Signal returns the platform signal for k.
func (k Kind) Signal() unix.Signal {
	switch k {
	case Kill:
		return unix.SIGKILL
	case Stop:
		return unix.SIGSTOP
	case Continue:
		return unix.SIGCONT
	default:
		return unix.SIGTERM
	}
}

// OwnerLookup resolves the real uid of a process. *process.Catalog
// implements it.
type OwnerLookup interface {
	OwnerUID(pid int) (uint32, error)
}

// Sender authorizes and delivers signals on behalf of one caller identity.
type Sender struct {
	CallerUID uint32
	Owners    OwnerLookup
	Logger    *slog.Logger

	kill func(pid int, sig unix.Signal) error
}

// NewSender returns a Sender acting as callerUID.
func NewSender(callerUID uint32, owners OwnerLookup) *Sender {
	return &Sender{CallerUID: callerUID, Owners: owners, kill: unix.Kill}
}

// Send delivers kind to pid if Authorize allows it. Errors wrap one of
// ErrInvalidTarget, ErrNotAuthorized, ErrNotFound or ErrInternal.
func (s *Sender) Send(pid int, kind Kind) error {
	if _, err := kind.MarshalText(); err != nil {
		return err
	}
	if pid < MinTargetPID {
		return Decision{Reason: InvalidTarget, PID: pid}.Err()
	}

	owner, err := s.Owners.OwnerUID(pid)
	if err != nil {
		if errors.Is(err, process.ErrNoProcess) {
			return fmt.Errorf("%w: pid %d", ErrNotFound, pid)
		}
		return fmt.Errorf("%w: owner of pid %d: %w", ErrInternal, pid, err)
	}

	if d := Authorize(s.CallerUID, owner, pid); !d.Allowed() {
		s.logger().Warn("signal denied", "pid", pid, "kind", kind, "caller", s.CallerUID, "owner", owner, "reason", d.Reason)
		return d.Err()
	}

	kill := s.kill
	if kill == nil {
		kill = unix.Kill
	}
	if err := kill(pid, kind.Signal()); err != nil {
		return mapErrno(pid, err)
	}
	s.logger().Info("signal delivered", "pid", pid, "kind", kind, "signal", unix.SignalName(kind.Signal()))
	return nil
}

func (s *Sender) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func mapErrno(pid int, err error) error {
	switch {
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: pid %d: %w", ErrNotAuthorized, pid, err)
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	default:
		return fmt.Errorf("%w: pid %d: %w", ErrInternal, pid, err)
	}
}
