// Package types holds small value types used when presenting samples.
package types

import "fmt"

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Bytes is a size in bytes.
type Bytes uint64

// Humanized picks the largest 1024-based unit not exceeding b.
func (b Bytes) Humanized() string {
	if b < 1024 {
		return fmt.Sprintf("%d B", uint64(b))
	}
	return scaled(float64(b))
}

// Rate is a throughput in bytes per second.
type Rate float64

// Humanized renders r like Bytes with a "/s" suffix. Negative and NaN
// rates render as zero.
func (r Rate) Humanized() string {
	v := float64(r)
	if !(v > 0) {
		return "0 B/s"
	}
	if v < 1024 {
		return fmt.Sprintf("%.0f B/s", v)
	}
	return scaled(v) + "/s"
}

// Percent is a share in [0, 100].
type Percent float64

func (p Percent) String() string { return fmt.Sprintf("%.1f%%", float64(p)) }

func scaled(v float64) string {
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}
