// Package rate turns pairs of cumulative counter samples into instantaneous
// rates and percentages. Every function saturates: a counter that moved
// backwards between two samples (reset, wrap, restarted source) yields 0,
// never a negative or wrapped value.
package rate

import (
	"math"

	"github.com/ja7ad/taskmon/pkg/system/proc"
)

// SubSat returns now-prev, or 0 when the counter went backwards.
func SubSat(now, prev uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	// counter wrapped or prev unset
	return 0
}

// SafeDiv returns n/d, or 0 when d is (nearly) zero.
func SafeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}

// ClampPercent bounds x to [0,100]; NaN becomes 0.
func ClampPercent(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

// CPUPercent is the busy share of the jiffies elapsed between prev and next:
//
//	(Δtotal - Δidle) / Δtotal * 100
//
// A stalled or regressed total yields 0 rather than a spurious 100%.
func CPUPercent(prev, next proc.CPUTotals) float64 {
	dIdle := SubSat(next.Idle, prev.Idle)
	dTotal := SubSat(next.Total, prev.Total)
	if dTotal == 0 {
		return 0
	}
	busy := SubSat(dTotal, dIdle)
	return float64(busy) / float64(dTotal) * 100
}

// PerSecond converts the growth of a cumulative counter over elapsedMs
// into units per second. elapsedMs is floored to 1 so back-to-back samples
// with no visible clock advance do not divide by zero.
func PerSecond(prev, next uint64, elapsedMs int64) float64 {
	if elapsedMs < 1 {
		elapsedMs = 1
	}
	return float64(SubSat(next, prev)) * 1000 / float64(elapsedMs)
}

// Percent returns part/whole*100, or 0 for an empty whole.
func Percent(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
