package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tklauser/go-sysconf"
)

// DefaultRoot is where procfs is normally mounted.
const DefaultRoot = "/proc"

// ClockTicks returns the number of jiffies (clock ticks) per second.
// The env var CLK_TCK takes precedence (useful for testing), then
// sysconf(_SC_CLK_TCK), then the common default of 100.
func ClockTicks() int {
	if v, _ := strconv.Atoi(os.Getenv("CLK_TCK")); v > 0 {
		return v
	}
	if v, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err == nil && v > 0 {
		return int(v)
	}
	return 100
}

// PageSize returns the system memory page size in bytes.
// Like ClockTicks, it first checks an env override (PAGE_SIZE)
// to ease testing, then falls back to os.Getpagesize().
func PageSize() int {
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if v, _ := strconv.Atoi(ps); v > 0 {
			return v
		}
	}
	return os.Getpagesize()
}

// FS reads counter files from a procfs mount. The zero value is not usable;
// construct with NewFS.
type FS struct {
	root string

	// readFile is swapped out by tests that need to inject read errors.
	readFile func(string) ([]byte, error)
}

// NewFS returns an FS rooted at root, or DefaultRoot when root is empty.
func NewFS(root string) *FS {
	if root == "" {
		root = DefaultRoot
	}
	return &FS{root: root, readFile: os.ReadFile}
}

// Root returns the directory the FS reads from.
func (fs *FS) Root() string { return fs.root }

// Path joins elem onto the procfs root.
func (fs *FS) Path(elem ...string) string {
	return filepath.Join(append([]string{fs.root}, elem...)...)
}

// ReadText reads a file below the root. A missing or empty file is reported
// as ErrSourceUnavailable so callers can tell "not there" from "garbled".
func (fs *FS) ReadText(elem ...string) (string, error) {
	b, err := fs.readFile(fs.Path(elem...))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrSourceUnavailable, fs.Path(elem...))
	}
	return string(b), nil
}

// CPUStat returns the text of <root>/stat.
func (fs *FS) CPUStat() (string, error) { return fs.ReadText("stat") }

// MemInfo returns the text of <root>/meminfo.
func (fs *FS) MemInfo() (string, error) { return fs.ReadText("meminfo") }

// NetDev returns the text of <root>/net/dev.
func (fs *FS) NetDev() (string, error) { return fs.ReadText("net", "dev") }

// DiskStats returns the text of <root>/diskstats.
func (fs *FS) DiskStats() (string, error) { return fs.ReadText("diskstats") }

// Uptime returns seconds since boot from <root>/uptime.
func (fs *FS) Uptime() (float64, error) {
	text, err := fs.ReadText("uptime")
	if err != nil {
		return 0, err
	}
	return ParseUptime(text)
}

// MemTotalBytes returns MemTotal from <root>/meminfo in bytes.
func (fs *FS) MemTotalBytes() (uint64, error) {
	text, err := fs.MemInfo()
	if err != nil {
		return 0, err
	}
	kb, err := ParseMemTotalKB(text)
	if err != nil {
		return 0, err
	}
	return kb * 1024, nil
}

// Exists reports whether <root>/<pid> is present.
func (fs *FS) Exists(pid int) bool {
	_, err := os.Stat(fs.Path(strconv.Itoa(pid)))
	return err == nil
}

// PIDs lists the numeric entries of the root directory in directory order.
func (fs *FS) PIDs() ([]int, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

//
// Per-PID readers
//

// ReadProcStat reads and parses <root>/<pid>/stat.
func (fs *FS) ReadProcStat(pid int) (ProcStat, error) {
	text, err := fs.ReadText(strconv.Itoa(pid), "stat")
	if err != nil {
		return ProcStat{}, err
	}
	return ParseProcStat(text)
}

// ReadStatus returns the raw text of <root>/<pid>/status.
func (fs *FS) ReadStatus(pid int) (string, error) {
	return fs.ReadText(strconv.Itoa(pid), "status")
}

// ReadCmdline returns the space-joined argument vector of a process, or ""
// for kernel threads and zombies whose cmdline is empty.
func (fs *FS) ReadCmdline(pid int) string {
	b, err := fs.readFile(fs.Path(strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return ""
	}
	return ParseCmdline(b)
}
