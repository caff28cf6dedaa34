package session

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// ElapsedSeconds returns the whole seconds of active play between start and now,
// excluding paused time. A negative span (clock moved backwards) yields 0.
func ElapsedSeconds(now, start time.Time, paused time.Duration) int {
	active := now.Sub(start) - paused
	if active < 0 {
		return 0
	}
	return int(active / time.Second)
}

// FormatTime renders seconds as m:ss. Minutes are not padded.
func FormatTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// pauseSpan is the length of a completed pause. It never goes negative so the
// accumulated paused duration stays monotonic across clock adjustments.
func pauseSpan(pauseStart, resumedAt time.Time) time.Duration {
	d := resumedAt.Sub(pauseStart)
	if d < 0 {
		return 0
	}
	return d
}
