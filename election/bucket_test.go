package election

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func bucketHash(b byte) primitives.Hash {
	var h primitives.Hash
	h[0] = b
	return h
}

func TestBucketIndexGroupsByDigitCount(t *testing.T) {
	if got := bucketIndex(primitives.AmountFromUint64(0)); got != 0 {
		t.Fatalf("expected zero balance in bucket 0, got %d", got)
	}
	small := bucketIndex(primitives.AmountFromUint64(5))
	large := bucketIndex(primitives.AmountFromUint64(5_000_000_000))
	if large <= small {
		t.Fatalf("expected a larger balance to land in a higher bucket index, got small=%d large=%d", small, large)
	}
}

func TestBucketFullAtCapacity(t *testing.T) {
	b := newBucket(2)
	if b.full() {
		t.Fatalf("expected empty bucket not full")
	}
	b.add(bucketHash(1), primitives.AmountFromUint64(1))
	b.add(bucketHash(2), primitives.AmountFromUint64(2))
	if !b.full() {
		t.Fatalf("expected bucket to report full at capacity")
	}
}

func TestBucketRemove(t *testing.T) {
	b := newBucket(4)
	root := bucketHash(1)
	b.add(root, primitives.AmountFromUint64(10))
	b.add(bucketHash(2), primitives.AmountFromUint64(20))

	b.remove(root)
	if len(b.entries) != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", len(b.entries))
	}
	if b.entries[0].root != bucketHash(2) {
		t.Fatalf("expected the other entry to remain")
	}
}

func TestBucketRemoveMissingIsNoop(t *testing.T) {
	b := newBucket(4)
	b.add(bucketHash(1), primitives.AmountFromUint64(10))
	b.remove(bucketHash(99))
	if len(b.entries) != 1 {
		t.Fatalf("expected remove of an absent root to be a no-op")
	}
}

func TestLowestEvictableSkipsConfirmed(t *testing.T) {
	b := newBucket(4)
	low, mid, confirmed := bucketHash(1), bucketHash(2), bucketHash(3)
	b.add(low, primitives.AmountFromUint64(5))
	b.add(mid, primitives.AmountFromUint64(50))
	b.add(confirmed, primitives.AmountFromUint64(1))

	isConfirmed := func(root primitives.Hash) bool { return root == confirmed }

	got, ok := b.lowestEvictable(isConfirmed)
	if !ok || got != low {
		t.Fatalf("expected the lowest-balance non-confirmed entry (%v), got %v ok=%v", low, got, ok)
	}
}

func TestLowestEvictableNoneWhenAllConfirmed(t *testing.T) {
	b := newBucket(4)
	root := bucketHash(1)
	b.add(root, primitives.AmountFromUint64(5))

	_, ok := b.lowestEvictable(func(primitives.Hash) bool { return true })
	if ok {
		t.Fatalf("expected no evictable entry when every election is confirmed")
	}
}
