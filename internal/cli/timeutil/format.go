// Package timeutil renders times and durations for CLI output.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is the layout for local times in tables and details.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatTime renders t in the caller's local time zone. A zero time
// renders as "-", which is how optional columns (expiry, last used)
// read when unset.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(LocalTimeFormat)
}

// FormatTimestamp renders an RFC3339 string the same way FormatTime
// does. Strings that do not parse pass through unchanged so raw server
// output stays visible.
func FormatTimestamp(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return FormatTime(t)
}

// FormatUptime renders a Go duration string like "72h30m15s" as
// "3d 0h 30m 15s". Strings that do not parse pass through unchanged.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
