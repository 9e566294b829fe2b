package stats

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatSeconds renders a duration such as "1h 5m 3s" or "2d 3h".
func FormatSeconds(sec int) string {
	sec = max(0, sec)
	d, h, m, s := sec/86400, sec%86400/3600, sec%3600/60, sec%60
	switch {
	case d > 0:
		return strings.TrimSpace(fmt.Sprintf("%dd %dh %s", d, h, minutesPart(m)))
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func FormatMinutes(minutes int) string {
	minutes = max(0, minutes)
	d, h, m := minutes/1440, minutes%1440/60, minutes%60
	switch {
	case d > 0:
		return strings.TrimSpace(fmt.Sprintf("%dd %dh %s", d, h, minutesPart(m)))
	case h > 0:
		return strings.TrimSpace(fmt.Sprintf("%dh %s", h, minutesPart(m)))
	case m > 0:
		return fmt.Sprintf("%dm", m)
	}
	return "0m"
}

func minutesPart(m int) string {
	if m == 0 {
		return ""
	}
	return fmt.Sprintf("%dm", m)
}

// FormatPercentage rounds to one decimal and drops a trailing ".0".
func FormatPercentage(value float64) string {
	return humanize.FtoaWithDigits(value, 1) + " %"
}
