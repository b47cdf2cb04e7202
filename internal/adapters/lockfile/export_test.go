package lockfile

import "time"

// SetClock replaces the clock used to stamp saved lockfiles.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
