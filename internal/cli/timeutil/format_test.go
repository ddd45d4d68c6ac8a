package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, ts.Local().Format(LocalTimeFormat), FormatTime(ts))
}

func TestFormatTimeZero(t *testing.T) {
	assert.Equal(t, "-", FormatTime(time.Time{}))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, FormatTime(ts), FormatTimestamp(ts.Format(time.RFC3339)))
}

func TestFormatTimestampPassthrough(t *testing.T) {
	assert.Equal(t, "not-a-time", FormatTimestamp("not-a-time"))
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"72h30m15s", "3d 0h 30m 15s"},
		{"2h5m0s", "2h 5m 0s"},
		{"90s", "1m 30s"},
		{"42s", "42s"},
		{"garbage", "garbage"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatUptime(tc.in), "input %q", tc.in)
	}
}
