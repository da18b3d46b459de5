// Package telemetry samples system-wide CPU, memory, disk and network
// counters on a fixed cadence and keeps a rolling history of each series.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ja7ad/taskmon/pkg/history"
	"github.com/ja7ad/taskmon/pkg/system/proc"
	"github.com/ja7ad/taskmon/pkg/system/rate"
)

// Source supplies the raw counter texts for one tick. *proc.FS implements it.
type Source interface {
	CPUStat() (string, error)
	MemInfo() (string, error)
	NetDev() (string, error)
	DiskStats() (string, error)
}

// State reports whether the sampler has a baseline to compute rates against.
type State int

const (
	Uninitialized State = iota // no tick has succeeded yet; every rate is 0
	Warm                       // rates are relative to the previous tick
)

func (s State) String() string {
	switch s {
	case Warm:
		return "warm"
	default:
		return "uninitialized"
	}
}

// counterPair is a timestamped pair of cumulative counters.
type counterPair struct {
	at   time.Time
	a, b uint64
	ok   bool
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// WithLogger sets the logger used for degraded-source diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) { s.log = l }
}

// Sampler owns the previous-tick baselines and six rolling histories.
// Sample calls are serialized; Latest may be called concurrently and only
// ever observes fully completed ticks.
type Sampler struct {
	src      Source
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger

	mu      sync.Mutex // serializes ticks, guards everything below
	state   State
	prevCPU proc.CPUTotals
	prevNet counterPair
	prevDsk counterPair

	cpu, ram, diskRead, diskWrite, netRx, netTx *history.Ring[MetricPoint]

	latestMu sync.RWMutex
	latest   *Snapshot
}

// New returns a sampler reading from src. interval is the cadence the caller
// intends to tick at; it sizes the histories to about a minute of data and
// drives Run.
func New(src Source, interval time.Duration, opts ...Option) *Sampler {
	capacity := history.CapacityFor(interval)
	s := &Sampler{
		src:       src,
		interval:  interval,
		now:       time.Now,
		log:       slog.Default(),
		cpu:       history.New[MetricPoint](capacity),
		ram:       history.New[MetricPoint](capacity),
		diskRead:  history.New[MetricPoint](capacity),
		diskWrite: history.New[MetricPoint](capacity),
		netRx:     history.New[MetricPoint](capacity),
		netTx:     history.New[MetricPoint](capacity),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Interval returns the configured tick cadence.
func (s *Sampler) Interval() time.Duration { return s.interval }

// HistoryCapacity returns the fixed length of each history series.
func (s *Sampler) HistoryCapacity() int { return s.cpu.Cap() }

// State returns Uninitialized until the first tick succeeds.
func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sample runs one tick. A failure of the CPU or memory source returns an
// error wrapping ErrParseFailure and leaves all state untouched. Network and
// disk are optional: if either is unavailable or holds no usable lines its
// rates are 0 for this tick and its baseline is dropped so the next reading
// starts fresh.
func (s *Sampler) Sample() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	cpuText, err := s.src.CPUStat()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: cpu: %w", ErrParseFailure, err)
	}
	cpu, err := proc.ParseCPUTotals(cpuText)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: cpu: %w", ErrParseFailure, err)
	}
	memText, err := s.src.MemInfo()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: meminfo: %w", ErrParseFailure, err)
	}
	mem, err := proc.ParseMemInfo(memText)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: meminfo: %w", ErrParseFailure, err)
	}

	net := s.readOptional("net", s.src.NetDev, proc.ParseNetworkTotals, now)
	dsk := s.readOptional("disk", s.src.DiskStats, proc.ParseDiskTotals, now)

	snap := Snapshot{
		SampledAt:      now,
		RAMTotalBytes:  mem.MemTotalKB * 1024,
		RAMUsedBytes:   rate.SubSat(mem.MemTotalKB, mem.MemAvailableKB) * 1024,
		SwapTotalBytes: mem.SwapTotalKB * 1024,
		SwapUsedBytes:  rate.SubSat(mem.SwapTotalKB, mem.SwapFreeKB) * 1024,
	}
	if s.state == Warm {
		snap.CPUPercent = rate.CPUPercent(s.prevCPU, cpu)
	}
	snap.NetRxBps, snap.NetTxBps = pairRates(s.prevNet, net)
	snap.DiskReadBps, snap.DiskWriteBps = pairRates(s.prevDsk, dsk)

	// Nothing below can fail: the tick commits as a unit.
	ts := now.UnixMilli()
	s.cpu.Push(MetricPoint{ts, snap.CPUPercent})
	s.ram.Push(MetricPoint{ts, snap.RAMPercent()})
	s.diskRead.Push(MetricPoint{ts, snap.DiskReadBps})
	s.diskWrite.Push(MetricPoint{ts, snap.DiskWriteBps})
	s.netRx.Push(MetricPoint{ts, snap.NetRxBps})
	s.netTx.Push(MetricPoint{ts, snap.NetTxBps})

	s.prevCPU = cpu
	s.prevNet = net
	s.prevDsk = dsk
	s.state = Warm

	snap.CPUHistory = s.cpu.Snapshot()
	snap.RAMHistory = s.ram.Snapshot()
	snap.DiskReadHistory = s.diskRead.Snapshot()
	snap.DiskWriteHistory = s.diskWrite.Snapshot()
	snap.NetRxHistory = s.netRx.Snapshot()
	snap.NetTxHistory = s.netTx.Snapshot()

	s.latestMu.Lock()
	s.latest = &snap
	s.latestMu.Unlock()

	return snap.Clone(), nil
}

// Latest returns a copy of the most recent successful snapshot.
func (s *Sampler) Latest() (Snapshot, bool) {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return s.latest.Clone(), true
}

// Run samples once immediately and then on every interval until ctx is
// done, handing each result to fn. It blocks; callers own the goroutine.
func (s *Sampler) Run(ctx context.Context, fn func(Snapshot, error)) {
	interval := s.interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(s.Sample())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(s.Sample())
		}
	}
}

func (s *Sampler) readOptional(name string, read func() (string, error), parse func(string) (uint64, uint64, int), now time.Time) counterPair {
	text, err := read()
	if err != nil {
		s.log.Debug("optional source unavailable", "source", name, "err", err)
		return counterPair{}
	}
	a, b, n := parse(text)
	if n == 0 {
		s.log.Debug("optional source has no usable lines", "source", name)
		return counterPair{}
	}
	return counterPair{at: now, a: a, b: b, ok: true}
}

func pairRates(prev, next counterPair) (float64, float64) {
	if !prev.ok || !next.ok {
		return 0, 0
	}
	elapsed := next.at.Sub(prev.at).Milliseconds()
	return rate.PerSecond(prev.a, next.a, elapsed), rate.PerSecond(prev.b, next.b, elapsed)
}
