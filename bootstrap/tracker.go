// Package bootstrap implements the ascending-bootstrap pull/ack state
// machine: per-account priority, a blocking set for accounts whose
// next block depends on a still-unknown predecessor or source, and
// correlation-id tracking for outstanding AscPullReq/AscPullAck pairs.
package bootstrap

import (
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// Default priority tuning constants, mirroring the reference node's
// ascending bootstrapper.
const (
	InitialPriority  = 2.0
	PriorityDecay    = 0.5
	PriorityIncrease = 1.0
	MaxPriority      = 32.0
	MinPriority      = 0.25

	// BootstrapTagDuration bounds how long a client waits for an ack
	// before its id→tag mapping is considered dead.
	BootstrapTagDuration = 15 * time.Second
)

// blockingEntry is an account whose next block is known to be wanted
// but cannot be requested yet because it depends on dependency first
// becoming known.
type blockingEntry struct {
	account  primitives.Account
	priority float64
}

// Tracker holds per-account priority and the blocking set. All methods
// are safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	priority map[primitives.Account]float64
	blocking map[primitives.Hash]blockingEntry
}

// NewTracker builds an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		priority: make(map[primitives.Account]float64),
		blocking: make(map[primitives.Hash]blockingEntry),
	}
}

// Prioritize ensures account is tracked with at least InitialPriority,
// e.g. when it's newly discovered as needing bootstrap attention.
func (t *Tracker) Prioritize(account primitives.Account) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.priority[account]; !ok {
		t.priority[account] = InitialPriority
	}
}

// Succeeded ticks account's priority up after a pull made progress
// (new blocks were applied), capped at MaxPriority.
func (t *Tracker) Succeeded(account primitives.Account) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.priority[account] + PriorityIncrease
	if p > MaxPriority {
		p = MaxPriority
	}
	t.priority[account] = p
}

// NoProgress decays account's priority after a pull returned nothing
// new. Once the decayed priority falls below MinPriority the account is
// dropped from tracking entirely (it will be re-discovered later if
// still relevant).
func (t *Tracker) NoProgress(account primitives.Account) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.priority[account] * PriorityDecay
	if p < MinPriority {
		delete(t.priority, account)
		return
	}
	t.priority[account] = p
}

// Block marks account as blocked on dependency: it will not be
// returned by NextReady until the dependency resolves via
// ResolveDependency.
func (t *Tracker) Block(account primitives.Account, dependency primitives.Hash, priority float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.priority, account)
	t.blocking[dependency] = blockingEntry{account: account, priority: priority}
}

// ResolveDependency implements modify_dependency_account: once
// dependency's hash is learned to belong to resolvedAccount, the entry
// blocked on that hash is removed and its priority is recorded in the
// priority table under resolvedAccount, unless resolvedAccount already
// has a higher priority, which is kept. The blocking table holds one
// entry per dependency hash: a later Block on the same hash replaces
// the earlier entry, so only the most recently blocked account's
// priority is carried over.
func (t *Tracker) ResolveDependency(dependency primitives.Hash, resolvedAccount primitives.Account) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.blocking[dependency]
	if !ok {
		return
	}
	delete(t.blocking, dependency)
	if existing, has := t.priority[resolvedAccount]; !has || existing < entry.priority {
		t.priority[resolvedAccount] = entry.priority
	}
}

// NextReady returns the highest-priority non-blocked account, if any.
func (t *Tracker) NextReady() (primitives.Account, float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var best primitives.Account
	bestPriority := -1.0
	found := false
	for account, p := range t.priority {
		if p > bestPriority {
			best, bestPriority, found = account, p, true
		}
	}
	return best, bestPriority, found
}

// BlockingLen reports how many accounts are currently blocked.
func (t *Tracker) BlockingLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.blocking)
}

// PriorityLen reports how many accounts are currently tracked with a
// (non-blocked) priority.
func (t *Tracker) PriorityLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.priority)
}
