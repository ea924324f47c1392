package search

import (
	"sync"

	"github.com/operator-framework/bnb/pkg/bnb"
)

// incumbent tracks the best integer-feasible assignment. Its objective
// never decreases.
type incumbent struct {
	mu   sync.RWMutex
	best bnb.Incumbent
}

func newIncumbent() *incumbent {
	return &incumbent{best: bnb.NoIncumbent()}
}

// Offer replaces the incumbent with candidate if candidate is strictly
// better and reports whether it did.
func (i *incumbent) Offer(candidate bnb.Incumbent) bool {
	if candidate.Assignment == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if candidate.Objective <= i.best.Objective {
		return false
	}
	i.best = candidate
	return true
}

func (i *incumbent) Objective() float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.best.Objective
}

// Snapshot returns the current incumbent. The assignment map is never
// written after it has been offered, so it is safe to share.
func (i *incumbent) Snapshot() bnb.Incumbent {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.best
}
