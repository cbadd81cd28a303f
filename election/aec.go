package election

import (
	"errors"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// ErrContainerFull is returned by Insert when the AEC is at capacity
// and no evictable (non-Confirmed) election could be found to make
// room for the newcomer.
var ErrContainerFull = errors.New("election: active elections container is full")

// Config bounds the container's total concurrency and per-bucket
// capacity, and sizes the recently-cemented ring buffer kept for
// Confirmed elections after they expire out of active tracking.
type Config struct {
	Capacity              int
	BucketCapacity        int
	RecentlyCementedLimit int
}

// DefaultConfig mirrors the reference node's defaults for a single
// instance's concurrent election budget.
func DefaultConfig() Config {
	return Config{Capacity: 5000, BucketCapacity: 250, RecentlyCementedLimit: 65536}
}

// Observer is notified of election lifecycle transitions the
// confirming set and local broadcaster care about.
type Observer interface {
	OnConfirmed(root primitives.Hash, winner *blocks.StateBlock)
	OnExpired(root primitives.Hash)
	OnCancelled(root primitives.Hash)
}

// AEC is the Active Elections Container: it bounds how many elections
// run concurrently, partitions them into balance-magnitude priority
// buckets, and retains a fixed-size record of recently confirmed
// elections after they leave active tracking.
type AEC struct {
	mu sync.Mutex

	cfg       Config
	elections map[primitives.Hash]*Election
	buckets   map[int]*bucket

	// byHash indexes every candidate block hash known to belong to a
	// tracked election back to that election's root, so a vote router
	// can look an election up by the hash a vote names rather than by
	// root. Populated on Insert (the initial candidate) and whenever a
	// new fork candidate is registered; pruned when an election leaves
	// active tracking.
	byHash map[primitives.Hash]primitives.Hash

	recentlyCemented []primitives.Hash
	cementedPos      int

	observers []Observer
}

func NewAEC(cfg Config) *AEC {
	return &AEC{
		cfg:       cfg,
		elections: make(map[primitives.Hash]*Election),
		buckets:   make(map[int]*bucket),
		byHash:    make(map[primitives.Hash]primitives.Hash),
	}
}

func (a *AEC) AddObserver(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

func (a *AEC) bucketFor(balance primitives.Amount) *bucket {
	idx := bucketIndex(balance)
	b, ok := a.buckets[idx]
	if !ok {
		b = newBucket(a.cfg.BucketCapacity)
		a.buckets[idx] = b
	}
	return b
}

func (a *AEC) isConfirmedLocked(root primitives.Hash) bool {
	e, ok := a.elections[root]
	if !ok {
		return true // already gone: treat as non-evictable-but-absent
	}
	s := e.State()
	return s == Confirmed || s == ExpiredConfirmed
}

// Insert admits a new election rooted at root with the given account
// balance (used for bucket placement and eviction priority). If the
// container or the target bucket is full, the lowest-priority
// non-Confirmed entry is evicted (Cancelled) to make room; if every
// entry in the way is Confirmed, Insert fails with ErrContainerFull.
func (a *AEC) Insert(root primitives.Hash, class Class, balance primitives.Amount, initial *blocks.StateBlock, now time.Time) (*Election, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.elections[root]; ok {
		return existing, nil
	}

	if len(a.elections) >= a.cfg.Capacity {
		if !a.evictGloballyLocked() {
			return nil, ErrContainerFull
		}
	}

	b := a.bucketFor(balance)
	if b.full() {
		victim, ok := b.lowestEvictable(a.isConfirmedLocked)
		if !ok {
			return nil, ErrContainerFull
		}
		a.cancelLocked(victim)
		b.remove(victim)
	}

	e := New(root, class, initial, now)
	a.elections[root] = e
	b.add(root, balance)
	if initial != nil {
		a.byHash[initial.Hash()] = root
	} else {
		a.byHash[root] = root
	}
	return e, nil
}

// RegisterCandidate records that hash is a fork candidate belonging to
// the election rooted at root, so a later vote naming hash can find the
// election by hash alone. The caller (the block processor, on
// discovering a new fork) is responsible for having already added the
// block to the election itself via AddCandidate.
func (a *AEC) RegisterCandidate(hash, root primitives.Hash) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.elections[root]; !ok {
		return
	}
	a.byHash[hash] = root
}

// FindByHash returns the active election that hash belongs to: the
// hash of the block it was inserted with (or its root, when inserted
// without a block), or a registered fork candidate.
func (a *AEC) FindByHash(hash primitives.Hash) (*Election, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	root, ok := a.byHash[hash]
	if !ok {
		return nil, false
	}
	e, ok := a.elections[root]
	return e, ok
}

// evictGloballyLocked drops the globally lowest-priority evictable
// election across all buckets to free a container-wide slot.
func (a *AEC) evictGloballyLocked() bool {
	var victim primitives.Hash
	var victimBalance primitives.Amount
	found := false
	for _, b := range a.buckets {
		root, ok := b.lowestEvictable(a.isConfirmedLocked)
		if !ok {
			continue
		}
		bal := entryBalance(b, root)
		if !found || bal.Cmp(victimBalance) < 0 {
			victim, victimBalance, found = root, bal, true
		}
	}
	if !found {
		return false
	}
	for _, b := range a.buckets {
		b.remove(victim)
	}
	a.cancelLocked(victim)
	return true
}

func entryBalance(b *bucket, root primitives.Hash) primitives.Amount {
	for _, e := range b.entries {
		if e.root == root {
			return e.balance
		}
	}
	return primitives.Amount{}
}

func (a *AEC) cancelLocked(root primitives.Hash) {
	e, ok := a.elections[root]
	if !ok {
		return
	}
	e.Cancel()
	delete(a.elections, root)
	a.pruneByHashLocked(root)
	for _, o := range a.observers {
		o.OnCancelled(root)
	}
}

// pruneByHashLocked removes every byHash entry pointing at root, called
// whenever that root leaves active tracking.
func (a *AEC) pruneByHashLocked(root primitives.Hash) {
	for hash, r := range a.byHash {
		if r == root {
			delete(a.byHash, hash)
		}
	}
}

// Cancel forcibly terminates an election, e.g. because the block it
// depends on was rolled back. Dependent elections are the caller's
// responsibility to cascade (see ledger rollback observers).
func (a *AEC) Cancel(root primitives.Hash) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.elections[root]
	if !ok {
		return
	}
	e.Cancel()
	delete(a.elections, root)
	a.pruneByHashLocked(root)
	for _, b := range a.buckets {
		b.remove(root)
	}
	for _, o := range a.observers {
		o.OnCancelled(root)
	}
}

// Get returns the active election for root, if any.
func (a *AEC) Get(root primitives.Hash) (*Election, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.elections[root]
	return e, ok
}

// Len returns the number of elections currently tracked.
func (a *AEC) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.elections)
}

// NotifyConfirmed is called by the caller once ProcessVote reports a
// transition to Confirmed: it records the root in the recently-
// cemented ring and fans the event out to observers (who enqueue it
// into the confirming set).
func (a *AEC) NotifyConfirmed(root primitives.Hash) {
	a.mu.Lock()
	e, ok := a.elections[root]
	if !ok {
		a.mu.Unlock()
		return
	}
	winner, _ := e.WinningBlock()
	a.appendRecentlyCementedLocked(root)
	observers := append([]Observer(nil), a.observers...)
	a.mu.Unlock()

	for _, o := range observers {
		o.OnConfirmed(root, winner)
	}
}

func (a *AEC) appendRecentlyCementedLocked(root primitives.Hash) {
	if a.cfg.RecentlyCementedLimit <= 0 {
		return
	}
	if len(a.recentlyCemented) < a.cfg.RecentlyCementedLimit {
		a.recentlyCemented = append(a.recentlyCemented, root)
		return
	}
	a.recentlyCemented[a.cementedPos] = root
	a.cementedPos = (a.cementedPos + 1) % a.cfg.RecentlyCementedLimit
}

// RecentlyCemented returns a snapshot of the ring buffer of recently
// confirmed election roots.
func (a *AEC) RecentlyCemented() []primitives.Hash {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]primitives.Hash, len(a.recentlyCemented))
	copy(out, a.recentlyCemented)
	return out
}

// Sweep removes every Confirmed election that has been marked
// cemented (moving it to ExpiredConfirmed) and every election whose
// deadline has passed without quorum (ExpiredUnconfirmed), notifying
// observers for expirations. It is meant to be called periodically
// from a maintenance goroutine.
func (a *AEC) Sweep(now time.Time) {
	a.mu.Lock()
	var expired []primitives.Hash
	for root, e := range a.elections {
		if e.CheckExpired(now) {
			expired = append(expired, root)
			continue
		}
		if e.State() == ExpiredConfirmed {
			expired = append(expired, root)
		}
	}
	for _, root := range expired {
		delete(a.elections, root)
		a.pruneByHashLocked(root)
		for _, b := range a.buckets {
			b.remove(root)
		}
	}
	observers := append([]Observer(nil), a.observers...)
	a.mu.Unlock()

	for _, root := range expired {
		for _, o := range observers {
			o.OnExpired(root)
		}
	}
}
