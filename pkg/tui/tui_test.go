package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/taskmon/pkg/process"
	"github.com/ja7ad/taskmon/pkg/telemetry"
)

type stubMetrics struct {
	snap telemetry.Snapshot
	err  error
}

func (s stubMetrics) Sample() (telemetry.Snapshot, error) { return s.snap, s.err }

type stubProcs struct{ last *process.Query }

func (s *stubProcs) List(q *process.Query) ([]process.Row, error) {
	s.last = q
	return []process.Row{{PID: 7, User: "root", Command: "sshd", CPUPercent: 2.5, MemPercent: 0.4}}, nil
}

func points(vals ...float64) []telemetry.MetricPoint {
	out := make([]telemetry.MetricPoint, len(vals))
	for i, v := range vals {
		out[i] = telemetry.MetricPoint{TimestampMs: int64(i), Value: v}
	}
	return out
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▅█", sparkline(points(0, 60, 100), 10, 100))
	assert.Equal(t, "▁█", sparkline(points(0, 5), 10, 0), "auto-scaled to max")
	assert.Equal(t, "▁▁", sparkline(points(0, 0), 10, 0))
	assert.Equal(t, "█", sparkline(points(200), 10, 100), "clamped")
	assert.Equal(t, 3, len([]rune(sparkline(points(1, 2, 3, 4, 5), 3, 0))), "keeps the newest points")
	assert.Empty(t, sparkline(nil, 10, 100))
}

func TestGaugeBar(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]  50.0%", gaugeBar(50, 10))
	assert.Equal(t, "[░░░░░░░░░░]   0.0%", gaugeBar(-3, 10))
	assert.Equal(t, "[██████████] 100.0%", gaugeBar(140, 10))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
}

func TestModel_SampleCycle(t *testing.T) {
	snap := telemetry.Snapshot{
		SampledAt:     time.Unix(1_700_000_000, 0),
		CPUPercent:    42,
		RAMUsedBytes:  1 << 30,
		RAMTotalBytes: 4 << 30,
		CPUHistory:    points(10, 42),
	}
	procs := &stubProcs{}
	m := New(stubMetrics{snap: snap}, procs, 0)
	assert.Equal(t, time.Second, m.interval)

	msg := m.Init()()
	require.IsType(t, sampleMsg{}, msg)
	require.NotNil(t, procs.last)
	assert.Equal(t, process.SortCPU, procs.last.SortBy)

	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "schedules the next tick")
	assert.InDelta(t, 42.0, m.latest.CPUPercent, 1e-9)
	require.Len(t, m.rows, 1)

	view := m.View()
	assert.Contains(t, view, "taskmon")
	assert.Contains(t, view, "sshd")
	assert.Contains(t, view, "42.0%")
	assert.Contains(t, view, "1.00 GB")

	_, cmd = m.Update(tickMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, sampleMsg{}, cmd())
}

func TestModel_SampleError(t *testing.T) {
	m := New(stubMetrics{err: errors.New("no /proc")}, &stubProcs{}, time.Second)
	m.Update(m.Init()())
	assert.Error(t, m.err)
	assert.True(t, strings.Contains(m.View(), "error: no /proc"))
}

func TestModel_Keys(t *testing.T) {
	m := New(stubMetrics{}, &stubProcs{}, time.Second)
	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	m.Update(key("m"))
	assert.Equal(t, process.SortMem, m.query.SortBy)
	m.Update(key("p"))
	assert.Equal(t, process.SortPID, m.query.SortBy)
	m.Update(key("r"))
	assert.Equal(t, process.Asc, m.query.SortDir)
	m.Update(key("r"))
	assert.Equal(t, process.Desc, m.query.SortDir)
	m.Update(key("c"))
	assert.Equal(t, process.SortCPU, m.query.SortBy)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 80, m.width)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
