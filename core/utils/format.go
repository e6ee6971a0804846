package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration renders d the way progress lines show it: milliseconds
// below one second, then one decimal of the largest fitting unit.
func FormatDuration(d time.Duration) string {
	ms := float64(d.Milliseconds())
	round := func(v float64) float64 { return math.Round(v*10) / 10 }

	seconds := round(ms / 1000)
	minutes := round(ms / (1000 * 60))
	hours := round(ms / (1000 * 60 * 60))
	days := round(ms / (1000 * 60 * 60 * 24))

	switch {
	case seconds < 1:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	case seconds < 60:
		return fmt.Sprintf("%.1f Sec", seconds)
	case minutes < 60:
		return fmt.Sprintf("%.1f Min", minutes)
	case hours < 24:
		return fmt.Sprintf("%.1f Hrs", hours)
	default:
		return fmt.Sprintf("%.1f Days", days)
	}
}

// FormatBytes renders a byte count with binary units (e.g. "1.5 MiB").
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
