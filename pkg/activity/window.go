// Package activity classifies raw GitHub events into qualifying activity
// and decides whether a user was active within a window.
package activity

import (
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// Today returns the half-open window covering the current UTC day of
// now: [midnight, midnight+24h).
func Today(now time.Time) types.Window {
	start := midnightUTC(now)
	return types.Window{Start: start, End: start.Add(24 * time.Hour)}
}

// LastNDays returns the window covering the last n UTC days including
// today: [midnight - (n-1) days, now). The now value is captured once by
// the caller and frozen for the whole invocation.
func LastNDays(now time.Time, n int) types.Window {
	if n < 1 {
		n = 1
	}
	start := midnightUTC(now).AddDate(0, 0, -(n - 1))
	return types.Window{Start: start, End: now.UTC()}
}

// midnightUTC truncates t to the start of its UTC day.
func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
