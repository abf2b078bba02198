package stats

import (
	"fmt"
	"strconv"
)

// FormatCount abbreviates large counts: 999, 1.2K, 3.4M.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.Itoa(n)
	}
}

// FormatDuration renders minutes as "45m", "2h" or "1h 5m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatWPM renders a rate, or "-" when there is none.
func FormatWPM(wpm float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f", wpm)
}
