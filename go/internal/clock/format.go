package clock

import "fmt"

// FormatCountdown renders milliseconds as h:mm:ss, rounding partial seconds down.
func FormatCountdown(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
