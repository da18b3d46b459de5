package process

import "errors"

var (
	// ErrScan indicates the process table itself could not be listed.
	ErrScan = errors.New("process: cannot scan process table")

	// ErrNoProcess indicates the pid has no entry in the process table.
	ErrNoProcess = errors.New("process: no such process")

	// ErrNoOwner indicates a process status carried no readable Uid line.
	ErrNoOwner = errors.New("process: owner unknown")

	// ErrBadQuery indicates an unknown sort key or direction.
	ErrBadQuery = errors.New("process: invalid query")
)
