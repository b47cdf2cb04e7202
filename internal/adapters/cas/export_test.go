package cas

import "time"

// SetClock replaces the clock used to stamp cache entries.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
