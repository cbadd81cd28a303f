package election

import (
	"github.com/stjet/rsban-node-sub005/primitives"
)

// bucketIndex maps a balance to a coarse power-of-ten priority bucket,
// the same "one bucket per balance-magnitude range" partitioning the
// scheduler uses to keep a handful of whale accounts from starving
// elections for every other account.
func bucketIndex(balance primitives.Amount) int {
	digits := 0
	s := balance.String()
	if s == "0" {
		return 0
	}
	digits = len(s)
	return digits
}

// bucketEntry is one election tracked inside a priority bucket, along
// with the balance used to rank it against bucket-mates.
type bucketEntry struct {
	root    primitives.Hash
	balance primitives.Amount
}

// bucket holds the elections whose account balance falls in one
// magnitude range, bounded at maxBlocks: once full, inserting a new
// election evicts the lowest-balance entry that isn't Confirmed.
type bucket struct {
	maxBlocks int
	entries   []bucketEntry
}

func newBucket(maxBlocks int) *bucket {
	return &bucket{maxBlocks: maxBlocks}
}

func (b *bucket) full() bool {
	return len(b.entries) >= b.maxBlocks
}

func (b *bucket) add(root primitives.Hash, balance primitives.Amount) {
	b.entries = append(b.entries, bucketEntry{root: root, balance: balance})
}

func (b *bucket) remove(root primitives.Hash) {
	for i, e := range b.entries {
		if e.root == root {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// lowestEvictable returns the lowest-balance entry in the bucket whose
// election (looked up via isConfirmed) is not already Confirmed, so a
// quorum-reached election is never evicted to make room for a
// newcomer.
func (b *bucket) lowestEvictable(isConfirmed func(primitives.Hash) bool) (primitives.Hash, bool) {
	var lowest primitives.Hash
	var lowestBalance primitives.Amount
	found := false
	for _, e := range b.entries {
		if isConfirmed(e.root) {
			continue
		}
		if !found || e.balance.Cmp(lowestBalance) < 0 {
			lowest, lowestBalance, found = e.root, e.balance, true
		}
	}
	return lowest, found
}
