package results

import (
	"fmt"
	"sync"
)

//RunStats tallies per-scene outcomes across workers.
type RunStats struct {
	mu          sync.Mutex
	scenes      int
	rows        int
	outOfBounds int
	failures    int
}

//CountRow records a written row, flagged when the site was out of bounds.
func (s *RunStats) CountRow(inBounds bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes++
	s.rows++
	if !inBounds {
		s.outOfBounds++
	}
}

//CountFailure records a scene that produced no row.
func (s *RunStats) CountFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes++
	s.failures++
}

//Failures returns the number of failed scenes, for the process exit code.
func (s *RunStats) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

//Summary renders the tally for the end-of-run log line.
func (s *RunStats) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%d scenes processed: %d rows written, %d out of bounds, %d failed",
		s.scenes, s.rows, s.outOfBounds, s.failures)
}
