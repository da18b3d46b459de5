// Package process lists the processes visible in procfs with per-process
// CPU and memory shares, and filters, sorts and pages the result.
package process

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ja7ad/taskmon/pkg/system/proc"
)

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithPasswd sets the passwd(5) file used to resolve user names.
func WithPasswd(path string) CatalogOption {
	return func(c *Catalog) { c.passwdPath = path }
}

// WithClockTicks overrides the jiffies-per-second used for CPU shares.
func WithClockTicks(hz int) CatalogOption {
	return func(c *Catalog) { c.clockTicks = hz }
}

// WithPageSize overrides the page size used to convert rss to bytes.
func WithPageSize(bytes int) CatalogOption {
	return func(c *Catalog) { c.pageSize = bytes }
}

// WithCommandCache enables reuse of resolved command lines across scans.
func WithCommandCache(cache *CommandCache) CatalogOption {
	return func(c *Catalog) { c.cache = cache }
}

// WithCatalogClock replaces time.Now for command cache bookkeeping.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) { c.now = now }
}

// WithCatalogLogger sets the logger for skipped processes and lookup failures.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) { c.log = l }
}

// Catalog produces process rows from a procfs mount. It holds no per-scan
// state, so concurrent ListAll calls are safe.
type Catalog struct {
	fs         *proc.FS
	passwdPath string
	clockTicks int
	pageSize   int
	cache      *CommandCache
	now        func() time.Time
	log        *slog.Logger

	readFile func(string) ([]byte, error)
}

// NewCatalog returns a catalog reading from fs.
func NewCatalog(fs *proc.FS, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		fs:         fs,
		passwdPath: DefaultPasswdPath,
		clockTicks: proc.ClockTicks(),
		pageSize:   proc.PageSize(),
		now:        time.Now,
		log:        slog.Default(),
		readFile:   os.ReadFile,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// scanContext carries the per-scan divisors shared by every row.
type scanContext struct {
	hz       float64
	uptime   float64
	page     float64
	memTotal float64
	users    map[uint32]string
	now      time.Time
}

// ListAll scans every numeric entry of the procfs root. Processes whose stat
// or status cannot be read or parsed are skipped; they usually exited
// mid-scan. Only a failure to list the root itself is an error.
func (c *Catalog) ListAll() ([]Row, error) {
	pids, err := c.fs.PIDs()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScan, err)
	}

	sc := c.newScanContext()
	rows := make([]Row, 0, len(pids))
	for _, pid := range pids {
		row, err := c.row(pid, sc)
		if err != nil {
			c.log.Debug("skip process", "pid", pid, "err", err)
			continue
		}
		rows = append(rows, row)
	}

	if c.cache != nil {
		c.cache.Prune(sc.now)
	}
	return rows, nil
}

// List scans and applies q, or DefaultQuery when q is nil.
func (c *Catalog) List(q *Query) ([]Row, error) {
	rows, err := c.ListAll()
	if err != nil {
		return nil, err
	}
	query := DefaultQuery()
	if q != nil {
		query = *q
	}
	return List(rows, query), nil
}

// OwnerUID returns the real uid of pid.
func (c *Catalog) OwnerUID(pid int) (uint32, error) {
	if pid <= 0 {
		return 0, fmt.Errorf("%w: pid %d", ErrNoProcess, pid)
	}
	status, err := c.fs.ReadStatus(pid)
	if err != nil {
		if !c.fs.Exists(pid) {
			return 0, fmt.Errorf("%w: pid %d", ErrNoProcess, pid)
		}
		return 0, err
	}
	uid, ok := proc.ParseStatusUID(status)
	if !ok {
		return 0, fmt.Errorf("%w: pid %d", ErrNoOwner, pid)
	}
	return uid, nil
}

func (c *Catalog) newScanContext() scanContext {
	sc := scanContext{
		hz:       float64(max(c.clockTicks, 1)),
		uptime:   1,
		page:     float64(max(c.pageSize, 0)),
		memTotal: 1,
		users:    c.users(),
		now:      c.now(),
	}
	if up, err := c.fs.Uptime(); err == nil {
		sc.uptime = max(up, 1)
	} else {
		c.log.Debug("uptime unavailable", "err", err)
	}
	if total, err := c.fs.MemTotalBytes(); err == nil {
		sc.memTotal = max(float64(total), 1)
	} else {
		c.log.Debug("memory total unavailable", "err", err)
	}
	return sc
}

func (c *Catalog) row(pid int, sc scanContext) (Row, error) {
	st, err := c.fs.ReadProcStat(pid)
	if err != nil {
		return Row{}, err
	}
	status, err := c.fs.ReadStatus(pid)
	if err != nil {
		return Row{}, err
	}
	uid, _ := proc.ParseStatusUID(status)

	jiffies := st.UTime + st.STime
	cpu := float64(jiffies) / sc.hz / sc.uptime * 100
	mem := float64(st.RSSPages) * sc.page / sc.memTotal * 100

	return Row{
		PID:        pid,
		User:       userName(sc.users, uid),
		Command:    c.command(pid, st, jiffies, sc.now),
		CPUPercent: float32(cpu),
		MemPercent: float32(mem),
	}, nil
}

func (c *Catalog) command(pid int, st proc.ProcStat, jiffies uint64, now time.Time) string {
	if c.cache != nil {
		if cmd, ok := c.cache.Get(pid, now, jiffies); ok {
			return cmd
		}
	}
	cmd := c.fs.ReadCmdline(pid)
	if cmd == "" {
		cmd = strings.TrimSpace(st.Comm)
	}
	if cmd == "" {
		cmd = "unknown"
	}
	if c.cache != nil {
		c.cache.Put(pid, cmd, now, jiffies)
	}
	return cmd
}

func (c *Catalog) users() map[uint32]string {
	if c.passwdPath == "" {
		return nil
	}
	b, err := c.readFile(c.passwdPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Debug("passwd unreadable", "path", c.passwdPath, "err", err)
		}
		return nil
	}
	return ParsePasswd(string(b))
}
