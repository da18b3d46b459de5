package proc

import (
	"fmt"
	"strconv"
	"strings"
)

// SectorSize is the fixed unit /proc/diskstats reports sector counts in,
// independent of the device's physical sector size.
const SectorSize = 512

// excludedDisks are device name prefixes left out of disk totals: loop and
// ram-backed devices, device-mapper targets (already counted on their
// backing disks), optical and floppy drives.
var excludedDisks = []string{"loop", "ram", "zram", "dm-", "sr", "fd"}

// CPUTotals is the aggregate CPU line of /proc/stat reduced to two jiffy
// counters. Both are cumulative since boot.
type CPUTotals struct {
	Idle  uint64
	Total uint64
}

// MemInfo holds the /proc/meminfo keys the sampler needs, in kilobytes.
type MemInfo struct {
	MemTotalKB     uint64
	MemAvailableKB uint64
	SwapTotalKB    uint64
	SwapFreeKB     uint64
}

// ProcStat is the subset of /proc/<pid>/stat used by the process catalog.
type ProcStat struct {
	Comm     string
	UTime    uint64 // user jiffies
	STime    uint64 // system jiffies
	RSSPages uint64
}

// ParseCPUTotals finds the aggregate "cpu" line (per-core lines are "cpuN")
// and returns idle jiffies (4th field) and the sum of all fields.
// Unparsable fields count as 0 but not toward the minimum of 4 numeric
// fields.
func ParseCPUTotals(text string) (CPUTotals, error) {
	for _, line := range strings.Split(text, "\n") {
		fs := strings.Fields(line)
		if len(fs) == 0 || fs[0] != "cpu" {
			continue
		}
		var (
			t       CPUTotals
			numeric int
		)
		for i, s := range fs[1:] {
			v, err := strconv.ParseUint(s, 10, 64)
			if err == nil {
				numeric++
			}
			if i == 3 {
				t.Idle = v
			}
			t.Total += v
		}
		if numeric < 4 {
			return CPUTotals{}, ErrNoCPU
		}
		return t, nil
	}
	return CPUTotals{}, ErrNoCPU
}

// ParseMemInfo extracts MemTotal, MemAvailable, SwapTotal and SwapFree.
// All four keys are required.
func ParseMemInfo(text string) (MemInfo, error) {
	var m MemInfo
	want := map[string]*uint64{
		"MemTotal":     &m.MemTotalKB,
		"MemAvailable": &m.MemAvailableKB,
		"SwapTotal":    &m.SwapTotalKB,
		"SwapFree":     &m.SwapFreeKB,
	}
	seen := make(map[string]bool, len(want))

	for _, line := range strings.Split(text, "\n") {
		label, rest, ok := splitLabel(line)
		if !ok {
			continue
		}
		dst, ok := want[label]
		if !ok {
			continue
		}
		fs := strings.Fields(rest)
		if len(fs) == 0 {
			return MemInfo{}, fmt.Errorf("%w: %s has no value", ErrNoMemInfo, label)
		}
		v, err := strconv.ParseUint(fs[0], 10, 64)
		if err != nil {
			return MemInfo{}, fmt.Errorf("%w: %s: %w", ErrNoMemInfo, label, err)
		}
		*dst = v
		seen[label] = true
	}

	for _, key := range []string{"MemTotal", "MemAvailable", "SwapTotal", "SwapFree"} {
		if !seen[key] {
			return MemInfo{}, fmt.Errorf("%w: missing %s", ErrNoMemInfo, key)
		}
	}
	return m, nil
}

// ParseMemTotalKB returns only the MemTotal value of /proc/meminfo.
func ParseMemTotalKB(text string) (uint64, error) {
	for _, line := range strings.Split(text, "\n") {
		label, rest, ok := splitLabel(line)
		if !ok || label != "MemTotal" {
			continue
		}
		fs := strings.Fields(rest)
		if len(fs) == 0 {
			break
		}
		v, err := strconv.ParseUint(fs[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: MemTotal: %w", ErrNoMemInfo, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: missing MemTotal", ErrNoMemInfo)
}

// ParseNetworkTotals sums receive and transmit byte counters of
// /proc/net/dev over every interface except loopback. Header and
// malformed lines are skipped; n is the number of interfaces counted.
func ParseNetworkTotals(text string) (rx, tx uint64, n int) {
	for _, line := range strings.Split(text, "\n") {
		iface, rest, ok := splitLabel(line)
		if !ok || iface == "lo" {
			continue
		}
		cols := strings.Fields(rest)
		if len(cols) < 9 {
			continue
		}
		rx += fieldU64(cols[0])
		tx += fieldU64(cols[8])
		n++
	}
	return rx, tx, n
}

// ParseDiskTotals sums bytes read and written from /proc/diskstats.
//
// Line layout: major minor name reads merged sectors_read ms writes merged
// sectors_written ... Sector columns are converted with SectorSize. n is the
// number of devices counted.
func ParseDiskTotals(text string) (readBytes, writeBytes uint64, n int) {
	for _, line := range strings.Split(text, "\n") {
		fs := strings.Fields(line)
		if len(fs) < 14 {
			continue
		}
		if hasAnyPrefix(fs[2], excludedDisks...) {
			continue
		}
		readBytes += fieldU64(fs[5]) * SectorSize
		writeBytes += fieldU64(fs[9]) * SectorSize
		n++
	}
	return readBytes, writeBytes, n
}

// ParseProcStat parses one /proc/<pid>/stat line.
//
// comm (2nd field) is wrapped in parens and may itself contain spaces and
// parens, so the split point is the LAST ')' in the line. Indexes below are
// relative to the fields after it (state is index 0):
//   - utime  (14th overall) => 11
//   - stime  (15th overall) => 12
//   - rss    (24th overall) => 21
func ParseProcStat(text string) (ProcStat, error) {
	i := strings.LastIndexByte(text, ')')
	if i < 0 {
		return ProcStat{}, ErrNoStat
	}
	fields := strings.Fields(text[i+1:])
	if len(fields) < 22 {
		return ProcStat{}, ErrShortStat
	}

	var (
		st  ProcStat
		err error
	)
	if j := strings.IndexByte(text, '('); j >= 0 && j < i {
		st.Comm = text[j+1 : i]
	}
	if st.UTime, err = strconv.ParseUint(fields[11], 10, 64); err != nil {
		return ProcStat{}, fmt.Errorf("%w: utime: %w", ErrNoStat, err)
	}
	if st.STime, err = strconv.ParseUint(fields[12], 10, 64); err != nil {
		return ProcStat{}, fmt.Errorf("%w: stime: %w", ErrNoStat, err)
	}
	if st.RSSPages, err = strconv.ParseUint(fields[21], 10, 64); err != nil {
		return ProcStat{}, fmt.Errorf("%w: rss: %w", ErrNoStat, err)
	}
	return st, nil
}

// ParseStatusUID returns the real uid from the "Uid:" line of
// /proc/<pid>/status.
func ParseStatusUID(text string) (uint32, bool) {
	for _, line := range strings.Split(text, "\n") {
		label, rest, ok := splitLabel(line)
		if !ok || label != "Uid" {
			continue
		}
		fs := strings.Fields(rest)
		if len(fs) == 0 {
			return 0, false
		}
		v, err := strconv.ParseUint(fs[0], 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(v), true
	}
	return 0, false
}

// ParseUptime returns seconds since boot from /proc/uptime.
func ParseUptime(text string) (float64, error) {
	fs := strings.Fields(text)
	if len(fs) == 0 {
		return 0, ErrNoUptime
	}
	v, err := strconv.ParseFloat(fs[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoUptime, err)
	}
	return v, nil
}

// ParseCmdline turns the NUL-separated /proc/<pid>/cmdline into a single
// space-joined string, dropping empty arguments.
func ParseCmdline(raw []byte) string {
	parts := strings.Split(string(raw), "\x00")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
