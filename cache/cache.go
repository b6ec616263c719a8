// Package cache keeps recent run results in memory for the status API.
package cache

import (
	"sync"

	"github.com/use-agent/vibcheck/models"
)

// Store is a bounded in-memory store of run results keyed by run ID.
// When full, the oldest run is evicted. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]*models.RunResult
	order   []string // run IDs, oldest first
	maxRuns int
}

// New creates a Store holding at most maxRuns results (minimum 1).
func New(maxRuns int) *Store {
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &Store{
		runs:    make(map[string]*models.RunResult),
		maxRuns: maxRuns,
	}
}

// Put stores a run result, replacing any earlier result with the same ID.
func (s *Store) Put(run *models.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		s.removeLocked(run.ID)
	}
	for len(s.order) >= s.maxRuns {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (*models.RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

// Latest returns the most recently stored run.
func (s *Store) Latest() (*models.RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, false
	}
	return s.runs[s.order[len(s.order)-1]], true
}

// Len returns the number of stored runs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) removeLocked(id string) {
	delete(s.runs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
