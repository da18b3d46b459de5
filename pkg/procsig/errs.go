package procsig

import "errors"

var (
	// ErrInvalidTarget rejects init and non-positive pids before any lookup.
	ErrInvalidTarget = errors.New("procsig: invalid target pid")

	// ErrNotAuthorized means the caller may not signal the target, either by
	// rule or because the kernel refused with EPERM.
	ErrNotAuthorized = errors.New("procsig: not authorized")

	// ErrNotFound means the target process does not exist (ESRCH).
	ErrNotFound = errors.New("procsig: no such process")

	// ErrInternal wraps any other delivery failure.
	ErrInternal = errors.New("procsig: signal delivery failed")

	// ErrUnknownKind is returned by ParseKind.
	ErrUnknownKind = errors.New("procsig: unknown signal kind")
)
