package proc

import "errors"

var (
	// ErrNoStat indicates that /proc/<pid>/stat was empty or had no comm terminator.
	ErrNoStat = errors.New("proc: malformed or empty stat")

	// ErrShortStat indicates that /proc/<pid>/stat had fewer fields than expected.
	ErrShortStat = errors.New("proc: short stat")

	// ErrNoCPU indicates that /proc/stat had no usable aggregate CPU line.
	ErrNoCPU = errors.New("proc: no cpu line")

	// ErrNoMemInfo indicates that /proc/meminfo lacked a required key
	// or carried a malformed value for one.
	ErrNoMemInfo = errors.New("proc: incomplete meminfo")

	// ErrNoUptime indicates that /proc/uptime was empty or malformed.
	ErrNoUptime = errors.New("proc: malformed uptime")

	// ErrSourceUnavailable indicates that a counter file was missing or empty.
	ErrSourceUnavailable = errors.New("proc: source unavailable")
)
