package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/draftline/draftline/internal/domain"
)

// Strategy selects a generation approach for a work item. Pure policy: no
// I/O, no side effects beyond advancing its RNG. Selection is uniform over
// the active pool; a fixed seed makes the sequence reproducible.
type Strategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStrategy creates a Strategy. A seed of 0 or less uses the current time.
// Parameters:
//   - seed: RNG seed for reproducible selection; <= 0 means non-deterministic.
// Returns:
//   - *Strategy: initialized strategy.
func NewStrategy(seed int64) *Strategy {
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	return &Strategy{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Select picks an approach from the pool matching the mode. Promotional mode
// only ever draws from the promotional pool and organic mode only from the
// organic pool.
func (s *Strategy) Select(promotional bool) domain.Approach {
	pool := domain.OrganicApproaches
	if promotional {
		pool = domain.PromotionalApproaches
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(pool))
	s.mu.Unlock()

	return pool[idx]
}
