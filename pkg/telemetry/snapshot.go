package telemetry

import (
	"slices"
	"time"

	"github.com/ja7ad/taskmon/pkg/system/rate"
)

// MetricPoint is one charted value. TimestampMs is Unix milliseconds.
type MetricPoint struct {
	TimestampMs int64   `json:"ts_ms"`
	Value       float64 `json:"value"`
}

// Snapshot is the result of one sampling tick: instantaneous values plus a
// copy of every rolling history as it stood after the tick.
type Snapshot struct {
	SampledAt time.Time `json:"sampled_at"`

	CPUPercent     float64 `json:"cpu_percent"`
	RAMUsedBytes   uint64  `json:"ram_used_bytes"`
	RAMTotalBytes  uint64  `json:"ram_total_bytes"`
	SwapUsedBytes  uint64  `json:"swap_used_bytes"`
	SwapTotalBytes uint64  `json:"swap_total_bytes"`
	DiskReadBps    float64 `json:"disk_read_bps"`
	DiskWriteBps   float64 `json:"disk_write_bps"`
	NetRxBps       float64 `json:"net_rx_bps"`
	NetTxBps       float64 `json:"net_tx_bps"`

	CPUHistory       []MetricPoint `json:"cpu_history"`
	RAMHistory       []MetricPoint `json:"ram_history"`
	DiskReadHistory  []MetricPoint `json:"disk_read_history"`
	DiskWriteHistory []MetricPoint `json:"disk_write_history"`
	NetRxHistory     []MetricPoint `json:"net_rx_history"`
	NetTxHistory     []MetricPoint `json:"net_tx_history"`
}

// RAMPercent returns used RAM as a share of total.
func (s Snapshot) RAMPercent() float64 { return rate.Percent(s.RAMUsedBytes, s.RAMTotalBytes) }

// SwapPercent returns used swap as a share of total.
func (s Snapshot) SwapPercent() float64 { return rate.Percent(s.SwapUsedBytes, s.SwapTotalBytes) }

// Clone returns a deep copy that shares no history storage with s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.CPUHistory = slices.Clone(s.CPUHistory)
	c.RAMHistory = slices.Clone(s.RAMHistory)
	c.DiskReadHistory = slices.Clone(s.DiskReadHistory)
	c.DiskWriteHistory = slices.Clone(s.DiskWriteHistory)
	c.NetRxHistory = slices.Clone(s.NetRxHistory)
	c.NetTxHistory = slices.Clone(s.NetTxHistory)
	return c
}
