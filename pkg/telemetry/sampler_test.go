package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/taskmon/pkg/system/proc"
)

// fakeSource serves canned counter texts; an empty string reads as unavailable.
type fakeSource struct {
	cpu, mem, net, disk string
}

func read(text string) (string, error) {
	if text == "" {
		return "", proc.ErrSourceUnavailable
	}
	return text, nil
}

func (f *fakeSource) CPUStat() (string, error)   { return read(f.cpu) }
func (f *fakeSource) MemInfo() (string, error)   { return read(f.mem) }
func (f *fakeSource) NetDev() (string, error)    { return read(f.net) }
func (f *fakeSource) DiskStats() (string, error) { return read(f.disk) }

// manualClock advances only when told to.
type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *manualClock { return &manualClock{t: time.UnixMilli(1_000)} }

func memText(total, avail, swapTotal, swapFree int) string {
	return fmt.Sprintf("MemTotal: %d kB\nMemAvailable: %d kB\nSwapTotal: %d kB\nSwapFree: %d kB\n",
		total, avail, swapTotal, swapFree)
}

func firstTick() *fakeSource {
	return &fakeSource{
		cpu:  "cpu  1 1 1 10 0 0 0 0 0 0\n",
		mem:  memText(1000, 400, 200, 100),
		net:  "eth0: 1000 0 0 0 0 0 0 0 2000 0 0 0 0 0 0 0\n",
		disk: "   8       0 sda 1 0 100 0 1 0 200 0 0 0 0 0 0 0 0 0 0\n",
	}
}

func TestSampler_FirstTickRatesAreZero(t *testing.T) {
	clk := newClock()
	s := New(firstTick(), 500*time.Millisecond, WithClock(clk.now))
	assert.Equal(t, Uninitialized, s.State())

	snap, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, Warm, s.State())

	assert.Zero(t, snap.CPUPercent)
	assert.Zero(t, snap.NetRxBps)
	assert.Zero(t, snap.NetTxBps)
	assert.Zero(t, snap.DiskReadBps)
	assert.Zero(t, snap.DiskWriteBps)

	assert.Equal(t, uint64(1000*1024), snap.RAMTotalBytes)
	assert.Equal(t, uint64(600*1024), snap.RAMUsedBytes)
	assert.Equal(t, uint64(200*1024), snap.SwapTotalBytes)
	assert.Equal(t, uint64(100*1024), snap.SwapUsedBytes)
	assert.InDelta(t, 60.0, snap.RAMPercent(), 1e-9)
	assert.InDelta(t, 50.0, snap.SwapPercent(), 1e-9)

	require.Len(t, snap.CPUHistory, 1)
	assert.Equal(t, MetricPoint{TimestampMs: 1_000, Value: 0}, snap.CPUHistory[0])
	assert.InDelta(t, 60.0, snap.RAMHistory[0].Value, 1e-9)
}

func TestSampler_GeneratesRatesAndHistory(t *testing.T) {
	clk := newClock()
	src := firstTick()
	s := New(src, 500*time.Millisecond, WithClock(clk.now))

	_, err := s.Sample()
	require.NoError(t, err)

	clk.advance(500 * time.Millisecond)
	src.cpu = "cpu  2 2 2 12 0 0 0 0 0 0\n"
	src.mem = memText(1000, 300, 200, 90)
	src.net = "eth0: 2000 0 0 0 0 0 0 0 2600 0 0 0 0 0 0 0\n"
	src.disk = "   8       0 sda 2 0 300 0 2 0 500 0 0 0 0 0 0 0 0 0 0\n"

	snap, err := s.Sample()
	require.NoError(t, err)

	// Δtotal = 5, Δidle = 2 → 60% busy
	assert.InDelta(t, 60.0, snap.CPUPercent, 1e-9)
	// 1000 B over 500ms
	assert.InDelta(t, 2000.0, snap.NetRxBps, 1e-9)
	assert.InDelta(t, 1200.0, snap.NetTxBps, 1e-9)
	// 200 and 300 sectors over 500ms
	assert.InDelta(t, 200*512*2.0, snap.DiskReadBps, 1e-9)
	assert.InDelta(t, 300*512*2.0, snap.DiskWriteBps, 1e-9)

	for name, h := range map[string][]MetricPoint{
		"cpu": snap.CPUHistory, "ram": snap.RAMHistory,
		"disk_read": snap.DiskReadHistory, "disk_write": snap.DiskWriteHistory,
		"net_rx": snap.NetRxHistory, "net_tx": snap.NetTxHistory,
	} {
		require.Len(t, h, 2, name)
		assert.Equal(t, int64(1_000), h[0].TimestampMs, name)
		assert.Equal(t, int64(1_500), h[1].TimestampMs, name)
	}
	assert.InDelta(t, 2000.0, snap.NetRxHistory[1].Value, 1e-9)
}

func TestSampler_CounterRegressionSaturates(t *testing.T) {
	clk := newClock()
	src := firstTick()
	s := New(src, time.Second, WithClock(clk.now))
	_, err := s.Sample()
	require.NoError(t, err)

	clk.advance(time.Second)
	src.cpu = "cpu  0 0 0 1 0 0 0 0 0 0\n"
	src.net = "eth0: 10 0 0 0 0 0 0 0 20 0 0 0 0 0 0 0\n"
	src.disk = "   8       0 sda 0 0 1 0 0 0 1 0 0 0 0 0 0 0 0 0 0\n"

	snap, err := s.Sample()
	require.NoError(t, err)
	assert.Zero(t, snap.CPUPercent)
	assert.Zero(t, snap.NetRxBps)
	assert.Zero(t, snap.NetTxBps)
	assert.Zero(t, snap.DiskReadBps)
	assert.Zero(t, snap.DiskWriteBps)
}

func TestSampler_RequiredSourceFailureIsFatal(t *testing.T) {
	cases := map[string]func(*fakeSource){
		"cpu_missing":    func(f *fakeSource) { f.cpu = "" },
		"cpu_unparsable": func(f *fakeSource) { f.cpu = "intr 1 2 3\n" },
		"mem_missing":    func(f *fakeSource) { f.mem = "" },
		"mem_incomplete": func(f *fakeSource) { f.mem = "MemTotal: 1 kB\n" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			clk := newClock()
			src := firstTick()
			s := New(src, time.Second, WithClock(clk.now))
			before, err := s.Sample()
			require.NoError(t, err)

			clk.advance(time.Second)
			mutate(src)
			_, err = s.Sample()
			require.ErrorIs(t, err, ErrParseFailure)

			// no half-updated histories, latest still the previous tick
			latest, ok := s.Latest()
			require.True(t, ok)
			assert.Equal(t, before, latest)
			assert.Len(t, latest.CPUHistory, 1)
		})
	}
}

func TestSampler_FailedFirstTickStaysUninitialized(t *testing.T) {
	src := firstTick()
	src.mem = ""
	s := New(src, time.Second)
	_, err := s.Sample()
	require.ErrorIs(t, err, ErrParseFailure)
	require.ErrorIs(t, err, proc.ErrSourceUnavailable)
	assert.Equal(t, Uninitialized, s.State())
	_, ok := s.Latest()
	assert.False(t, ok)
}

func TestSampler_OptionalSourcesDegradeToZero(t *testing.T) {
	clk := newClock()
	src := firstTick()
	s := New(src, time.Second, WithClock(clk.now))
	_, err := s.Sample()
	require.NoError(t, err)

	t.Run("missing_this_tick", func(t *testing.T) {
		clk.advance(time.Second)
		src.cpu = "cpu  2 2 2 12 0 0 0 0 0 0\n"
		src.net = ""
		src.disk = ""
		snap, err := s.Sample()
		require.NoError(t, err)
		assert.InDelta(t, 60.0, snap.CPUPercent, 1e-9)
		assert.Zero(t, snap.NetRxBps)
		assert.Zero(t, snap.DiskWriteBps)
		assert.Len(t, snap.NetRxHistory, 2)
	})

	t.Run("back_next_tick_rewarms", func(t *testing.T) {
		clk.advance(time.Second)
		src.net = "eth0: 9000 0 0 0 0 0 0 0 9000 0 0 0 0 0 0 0\n"
		src.disk = "   8       0 sda 2 0 300 0 2 0 500 0 0 0 0 0 0 0 0 0 0\n"
		snap, err := s.Sample()
		require.NoError(t, err)
		assert.Zero(t, snap.NetRxBps, "no baseline from the degraded tick")
		assert.Zero(t, snap.DiskReadBps)
	})

	t.Run("rates_resume", func(t *testing.T) {
		clk.advance(time.Second)
		src.net = "eth0: 10000 0 0 0 0 0 0 0 9500 0 0 0 0 0 0 0\n"
		snap, err := s.Sample()
		require.NoError(t, err)
		assert.InDelta(t, 1000.0, snap.NetRxBps, 1e-9)
		assert.InDelta(t, 500.0, snap.NetTxBps, 1e-9)
	})
}

func TestSampler_GarbledOptionalSourceDropsBaseline(t *testing.T) {
	clk := newClock()
	src := firstTick()
	src.net = "eth0: 1000000 0 0 0 0 0 0 0 2000 0 0 0 0 0 0 0\n"
	s := New(src, time.Second, WithClock(clk.now))
	_, err := s.Sample()
	require.NoError(t, err)

	clk.advance(time.Second)
	src.net = "Inter-|   Receive |  Transmit\n face |bytes packets|bytes packets\n"
	src.disk = "   7       0 loop0 50 0 5000 0 0 0 0 0 0 0 0 0 0 0 0\n"
	snap, err := s.Sample()
	require.NoError(t, err)
	assert.Zero(t, snap.NetRxBps)
	assert.Zero(t, snap.DiskReadBps)

	clk.advance(time.Second)
	src.net = "eth0: 1000010 0 0 0 0 0 0 0 2000 0 0 0 0 0 0 0\n"
	src.disk = "   8       0 sda 1 0 100 0 1 0 200 0 0 0 0 0 0 0 0 0 0\n"
	snap, err = s.Sample()
	require.NoError(t, err)
	assert.Zero(t, snap.NetRxBps, "an empty reading is not a zero baseline")
	assert.Zero(t, snap.DiskReadBps)

	clk.advance(time.Second)
	src.net = "eth0: 1000110 0 0 0 0 0 0 0 2000 0 0 0 0 0 0 0\n"
	snap, err = s.Sample()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, snap.NetRxBps, 1e-9)
}

func TestSampler_NoClockAdvanceFloorsElapsed(t *testing.T) {
	clk := newClock()
	src := firstTick()
	s := New(src, time.Second, WithClock(clk.now))
	_, err := s.Sample()
	require.NoError(t, err)

	src.net = "eth0: 1010 0 0 0 0 0 0 0 2000 0 0 0 0 0 0 0\n"
	snap, err := s.Sample()
	require.NoError(t, err)
	assert.InDelta(t, 10_000.0, snap.NetRxBps, 1e-9)
}

func TestSampler_HistoryBounded(t *testing.T) {
	clk := newClock()
	s := New(firstTick(), 2*time.Second, WithClock(clk.now))
	require.Equal(t, 30, s.HistoryCapacity())
	require.Equal(t, 2*time.Second, s.Interval())

	var snap Snapshot
	var err error
	for range 45 {
		clk.advance(2 * time.Second)
		snap, err = s.Sample()
		require.NoError(t, err)
	}
	assert.Len(t, snap.CPUHistory, 30)
	assert.Len(t, snap.NetTxHistory, 30)
	assert.Equal(t, clk.t.UnixMilli(), snap.CPUHistory[29].TimestampMs)
}

func TestSampler_ReturnedSnapshotIsOwnedByCaller(t *testing.T) {
	s := New(firstTick(), time.Second)
	snap, err := s.Sample()
	require.NoError(t, err)

	snap.CPUHistory[0].Value = 999
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.NotEqual(t, 999.0, latest.CPUHistory[0].Value)

	latest.RAMHistory[0].Value = -1
	again, _ := s.Latest()
	assert.NotEqual(t, -1.0, again.RAMHistory[0].Value)
}

func TestSampler_ConcurrentLatest(t *testing.T) {
	s := New(firstTick(), time.Second)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if snap, ok := s.Latest(); ok {
					// every observed snapshot is internally consistent
					assert.Equal(t, len(snap.CPUHistory), len(snap.NetTxHistory))
				}
			}
		}()
	}
	for range 50 {
		_, err := s.Sample()
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestSampler_Run(t *testing.T) {
	s := New(firstTick(), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var (
		mu    sync.Mutex
		ticks int
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func(_ Snapshot, err error) {
			assert.NoError(t, err)
			mu.Lock()
			ticks++
			n := ticks
			mu.Unlock()
			if n == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("Run did not stop after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, ticks, 3)
}

func TestSampler_RunReportsErrors(t *testing.T) {
	src := firstTick()
	src.cpu = ""
	s := New(src, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	var got error
	s.Run(ctx, func(_ Snapshot, err error) {
		got = err
		cancel()
	})
	assert.True(t, errors.Is(got, ErrParseFailure))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "warm", Warm.String())
}
