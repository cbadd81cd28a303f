package ledger

import (
	"sync"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// RepWeights tracks each representative's total voting weight: the
// sum of balances of every account currently delegating to it. It is
// read on every vote-tally computation in the election engine and
// written on every ledger Apply/Rollback, so it is kept as a plain
// mutex-guarded map rather than a lock-free structure — voting-weight
// reads are not hot enough (bounded by elections in flight, not by
// network message rate) to justify the complexity of a lock-free map.
type RepWeights struct {
	mu      sync.RWMutex
	weights map[primitives.Account]primitives.Amount
}

func NewRepWeights() *RepWeights {
	return &RepWeights{weights: make(map[primitives.Account]primitives.Amount)}
}

// Get returns the representative's current weight, or zero if unknown.
func (w *RepWeights) Get(rep primitives.Account) primitives.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.weights[rep]
}

// Add credits amt to rep's weight.
func (w *RepWeights) Add(rep primitives.Account, amt primitives.Amount) {
	if amt.IsZero() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.weights[rep] = w.weights[rep].Add(amt)
}

// Subtract debits amt from rep's weight, wrapping (not panicking) on
// underflow, consistent with Amount's ring semantics elsewhere.
func (w *RepWeights) Subtract(rep primitives.Account, amt primitives.Amount) {
	if amt.IsZero() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.weights[rep] = w.weights[rep].Sub(amt)
}

// Move shifts amt from oldRep to newRep in one call, the common case
// on a representative change or a balance update under the same rep.
func (w *RepWeights) Move(oldRep, newRep primitives.Account, amt primitives.Amount) {
	if oldRep == newRep {
		return
	}
	w.Subtract(oldRep, amt)
	w.Add(newRep, amt)
}

// Snapshot returns a copy of the full weight table, used by the
// election engine's online-weight trending sampler.
func (w *RepWeights) Snapshot() map[primitives.Account]primitives.Amount {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[primitives.Account]primitives.Amount, len(w.weights))
	for k, v := range w.weights {
		out[k] = v
	}
	return out
}
