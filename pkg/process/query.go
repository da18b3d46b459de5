package process

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultLimit caps the rows returned when the caller supplies no query.
const DefaultLimit = 300

// Row is one process as seen by a single catalog scan. Rows carry no
// identity across scans.
type Row struct {
	PID        int     `json:"pid"`
	User       string  `json:"user"`
	Command    string  `json:"command"`
	CPUPercent float32 `json:"cpu_percent"`
	MemPercent float32 `json:"mem_percent"`
}

// SortKey selects the column rows are ordered by.
type SortKey string

const (
	SortNone    SortKey = ""
	SortCPU     SortKey = "cpu"
	SortMem     SortKey = "mem"
	SortPID     SortKey = "pid"
	SortUser    SortKey = "user"
	SortCommand SortKey = "command"
)

// ParseSortKey accepts "", cpu, mem, pid, user and command.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortCPU, SortMem, SortPID, SortUser, SortCommand:
		return k, nil
	}
	return SortNone, fmt.Errorf("%w: sort key %q", ErrBadQuery, s)
}

// SortDir is the requested direction. See List for how Asc is applied.
type SortDir string

const (
	DirDefault SortDir = ""
	Desc       SortDir = "desc"
	Asc        SortDir = "asc"
)

// ParseSortDir accepts "", asc and desc.
func ParseSortDir(s string) (SortDir, error) {
	switch d := SortDir(strings.ToLower(strings.TrimSpace(s))); d {
	case DirDefault, Desc, Asc:
		return d, nil
	}
	return DirDefault, fmt.Errorf("%w: sort direction %q", ErrBadQuery, s)
}

// Query narrows, orders and pages a row set. The zero value returns rows
// unchanged. A nil Limit means "everything after Offset".
type Query struct {
	Search  string
	SortBy  SortKey
	SortDir SortDir
	Limit   *int
	Offset  int
}

// DefaultQuery is applied when a caller supplies no query at all:
// busiest processes first, at most DefaultLimit rows.
func DefaultQuery() Query {
	limit := DefaultLimit
	return Query{SortBy: SortCPU, SortDir: Desc, Limit: &limit}
}

// List filters, sorts and pages rows without modifying the input slice.
//
//  1. Search keeps rows whose command or user contains it, case-insensitively.
//  2. SortBy orders rows by the key's natural order: cpu and mem descending,
//     pid ascending, user and command lexicographically ascending. With no
//     key the scan order is kept.
//  3. SortDir Asc reverses the result of step 2 when a key is set. For cpu
//     and mem this yields ascending order; for pid, user and command it
//     yields descending order.
//  4. Offset rows are skipped, then at most Limit rows are taken.
func List(rows []Row, q Query) []Row {
	out := slices.Clone(rows)

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		out = slices.DeleteFunc(out, func(r Row) bool {
			return !strings.Contains(strings.ToLower(r.Command), needle) &&
				!strings.Contains(strings.ToLower(r.User), needle)
		})
	}

	if cmpFn := comparator(q.SortBy); cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
		if q.SortDir == Asc {
			slices.Reverse(out)
		}
	}

	offset := max(q.Offset, 0)
	if offset >= len(out) {
		return []Row{}
	}
	out = out[offset:]
	if q.Limit != nil && *q.Limit < len(out) {
		out = out[:max(*q.Limit, 0)]
	}
	return out
}

func comparator(key SortKey) func(a, b Row) int {
	switch key {
	case SortCPU:
		return func(a, b Row) int { return cmp.Compare(b.CPUPercent, a.CPUPercent) }
	case SortMem:
		return func(a, b Row) int { return cmp.Compare(b.MemPercent, a.MemPercent) }
	case SortPID:
		return func(a, b Row) int { return cmp.Compare(a.PID, b.PID) }
	case SortUser:
		return func(a, b Row) int { return strings.Compare(a.User, b.User) }
	case SortCommand:
		return func(a, b Row) int { return strings.Compare(a.Command, b.Command) }
	}
	return nil
}
