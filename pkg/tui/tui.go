// Package tui renders a live dashboard of telemetry and the busiest
// processes in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ja7ad/taskmon/pkg/process"
	"github.com/ja7ad/taskmon/pkg/system/rate"
	"github.com/ja7ad/taskmon/pkg/telemetry"
	"github.com/ja7ad/taskmon/pkg/types"
)

// Metrics produces one telemetry tick per call.
type Metrics interface {
	Sample() (telemetry.Snapshot, error)
}

// Processes lists process rows for a query.
type Processes interface {
	List(q *process.Query) ([]process.Row, error)
}

const tableRows = 15

// Model renders samples pulled from a sampler and a process catalog.
type Model struct {
	metrics  Metrics
	procs    Processes
	interval time.Duration

	query  process.Query
	latest telemetry.Snapshot
	rows   []process.Row
	err    error
	width  int
	height int
}

func New(m Metrics, p Processes, interval time.Duration) *Model {
	if interval <= 0 {
		interval = time.Second
	}
	limit := tableRows
	return &Model{
		metrics:  m,
		procs:    p,
		interval: interval,
		query:    process.Query{SortBy: process.SortCPU, SortDir: process.Desc, Limit: &limit},
		width:    120,
		height:   40,
	}
}

// Messages
type (
	tickMsg   struct{}
	sampleMsg struct {
		snap telemetry.Snapshot
		rows []process.Row
		err  error
	}
)

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) sampleCmd() tea.Cmd {
	q := m.query
	return func() tea.Msg {
		snap, err := m.metrics.Sample()
		if err != nil {
			return sampleMsg{err: err}
		}
		rows, err := m.procs.List(&q)
		return sampleMsg{snap: snap, rows: rows, err: err}
	}
}

func (m *Model) Init() tea.Cmd { return m.sampleCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.query.SortBy = process.SortCPU
		case "m":
			m.query.SortBy = process.SortMem
		case "p":
			m.query.SortBy = process.SortPID
		case "r":
			if m.query.SortDir == process.Asc {
				m.query.SortDir = process.Desc
			} else {
				m.query.SortDir = process.Asc
			}
		}
	case tickMsg:
		return m, m.sampleCmd()
	case sampleMsg:
		m.err = msg.err
		if msg.err == nil {
			m.latest = msg.snap
			m.rows = msg.rows
		}
		return m, m.tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	sparkTicks  = []rune("▁▂▃▄▅▆▇█")
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("taskmon") + "  " +
		subtleStyle.Render(s.SampledAt.Format("Mon Jan 2 15:04:05 MST 2006")) + "  " +
		subtleStyle.Render(fmt.Sprintf("sort %s %s  [c]pu [m]em [p]id [r]everse [q]uit", m.query.SortBy, dirLabel(m.query.SortDir)))

	const spark = 30
	cpuCard := card("CPU",
		gaugeBar(s.CPUPercent, 24)+"\n"+sparkline(s.CPUHistory, spark, 100))

	memCard := card("Memory",
		fmt.Sprintf("%s\n%s / %s | Swap %s\n%s",
			gaugeBar(s.RAMPercent(), 24),
			types.Bytes(s.RAMUsedBytes).Humanized(),
			types.Bytes(s.RAMTotalBytes).Humanized(),
			types.Percent(s.SwapPercent()),
			sparkline(s.RAMHistory, spark, 100)))

	diskCard := card("Disk",
		fmt.Sprintf("R %s  W %s\n%s",
			types.Rate(s.DiskReadBps).Humanized(),
			types.Rate(s.DiskWriteBps).Humanized(),
			sparkline(s.DiskReadHistory, spark, 0)))

	netCard := card("Network",
		fmt.Sprintf("RX %s  TX %s\n%s",
			types.Rate(s.NetRxBps).Humanized(),
			types.Rate(s.NetTxBps).Humanized(),
			sparkline(s.NetRxHistory, spark, 0)))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, diskCard, netCard)
	table := card("Processes", renderTable(m.rows, tableRows))

	parts := []string{header, line1, line2, table}
	if m.err != nil {
		parts = append(parts, errStyle.Render("error: "+m.err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Helpers
func gaugeBar(pct float64, width int) string {
	pct = rate.ClampPercent(pct)
	filled := min(int((pct/100)*float64(width)), width)
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

// sparkline draws the last width points scaled to ceiling, or to the
// largest visible value when ceiling is 0.
func sparkline(points []telemetry.MetricPoint, width int, ceiling float64) string {
	if len(points) > width {
		points = points[len(points)-width:]
	}
	top := ceiling
	if top <= 0 {
		for _, p := range points {
			top = max(top, p.Value)
		}
	}
	var b strings.Builder
	for _, p := range points {
		idx := int(rate.SafeDiv(max(p.Value, 0), top) * float64(len(sparkTicks)-1))
		b.WriteRune(sparkTicks[max(0, min(idx, len(sparkTicks)-1))])
	}
	return b.String()
}

func card(title, body string) string {
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

func renderTable(rows []process.Row, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-7s %-10s %6s %6s  %s\n", "pid", "user", "cpu%", "mem%", "command")
	for _, r := range rows[:min(limit, len(rows))] {
		fmt.Fprintf(&b, "%-7d %-10s %6.1f %6.1f  %s\n",
			r.PID, truncate(r.User, 10), r.CPUPercent, r.MemPercent, truncate(r.Command, 48))
	}
	return strings.TrimRight(b.String(), "\n")
}

func dirLabel(d process.SortDir) string {
	if d == process.Asc {
		return "(reversed)"
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(m Metrics, p Processes, interval time.Duration) error {
	prog := tea.NewProgram(New(m, p, interval), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
