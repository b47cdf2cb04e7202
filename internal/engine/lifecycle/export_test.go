package lifecycle

import "time"

// SetClock replaces the clock used for installed_at.
func (e *Executor) SetClock(now func() time.Time) {
	e.now = now
}
