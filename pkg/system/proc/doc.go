// Package proc reads and parses the Linux procfs counter files that taskmon
// samples. It has two layers.
//
// # Parsers
//
// Pure functions that turn the text of one pseudo-file into typed totals.
// They never touch the filesystem and are safe to call from any goroutine.
//
//	ParseCPUTotals(text)     aggregate "cpu " line of /proc/stat -> CPUTotals{Idle, Total}
//	ParseMemInfo(text)       /proc/meminfo -> MemInfo (four keys, all required)
//	ParseMemTotalKB(text)    /proc/meminfo -> MemTotal only
//	ParseNetworkTotals(text) /proc/net/dev -> rx, tx bytes summed over non-loopback interfaces, count
//	ParseDiskTotals(text)    /proc/diskstats -> read, write bytes over physical devices, count
//	ParseProcStat(text)      /proc/<pid>/stat -> comm, utime, stime, rss pages
//	ParseStatusUID(text)     /proc/<pid>/status -> real uid
//	ParseUptime(text)        /proc/uptime -> seconds since boot
//	ParseCmdline(raw)        /proc/<pid>/cmdline -> space-joined argv
//
// CPUTotals.Total is the sum of every numeric field on the aggregate line;
// tokens that fail to parse count as zero. Fewer than four numeric fields is
// ErrNoCPU.
//
// Network totals skip the "lo" interface. Disk totals skip virtual devices
// (loop, ram, zram, dm-, sr, fd) and convert sectors to bytes with
// SectorSize. Neither returns an error; the count of interfaces or devices
// summed is zero when the text held nothing usable, and callers treat that
// like an unavailable source.
//
// ParseProcStat anchors on the last ')' so command names containing spaces
// or parentheses do not shift field positions.
//
// # FS
//
// FS binds the parsers to a procfs mount. NewFS("") reads /proc; tests and
// containers can point it elsewhere. ReadText reports a missing or empty file
// as ErrSourceUnavailable so callers can tell "not there" from "garbled".
//
//	fs := proc.NewFS("")
//	text, err := fs.CPUStat()
//	if err != nil { ... }
//	cpu, err := proc.ParseCPUTotals(text)
//
// ClockTicks and PageSize report CLK_TCK and the memory page size. Both honor
// env overrides (CLK_TCK, PAGE_SIZE) so fixtures produce stable numbers.
package proc
