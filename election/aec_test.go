package election

import (
	"testing"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func TestInsertAndGet(t *testing.T) {
	a := NewAEC(DefaultConfig())
	root := testHash(1)
	e, err := a.Insert(root, Priority, primitives.AmountFromUint64(100), nil, time.Now())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, ok := a.Get(root)
	if !ok || got != e {
		t.Fatalf("expected to retrieve inserted election")
	}
	if a.Len() != 1 {
		t.Fatalf("expected len 1, got %d", a.Len())
	}
}

func TestBucketEvictsLowestBalance(t *testing.T) {
	cfg := Config{Capacity: 100, BucketCapacity: 2, RecentlyCementedLimit: 16}
	a := NewAEC(cfg)

	// Same bucket (same decimal-digit count): balances 100, 200 fill
	// it; inserting a third evicts the smallest (100).
	low := testHash(1)
	high := testHash(2)
	newcomer := testHash(3)

	if _, err := a.Insert(low, Priority, primitives.AmountFromUint64(100), nil, time.Now()); err != nil {
		t.Fatalf("insert low: %v", err)
	}
	if _, err := a.Insert(high, Priority, primitives.AmountFromUint64(200), nil, time.Now()); err != nil {
		t.Fatalf("insert high: %v", err)
	}
	if _, err := a.Insert(newcomer, Priority, primitives.AmountFromUint64(150), nil, time.Now()); err != nil {
		t.Fatalf("insert newcomer: %v", err)
	}

	if _, ok := a.Get(low); ok {
		t.Fatalf("expected lowest-balance election to be evicted")
	}
	if _, ok := a.Get(high); !ok {
		t.Fatalf("expected higher-balance election to survive")
	}
	if _, ok := a.Get(newcomer); !ok {
		t.Fatalf("expected newcomer to be admitted")
	}
}

func TestConfirmedElectionNotEvicted(t *testing.T) {
	cfg := Config{Capacity: 100, BucketCapacity: 1, RecentlyCementedLimit: 16}
	a := NewAEC(cfg)

	root := testHash(1)
	e, err := a.Insert(root, Priority, primitives.AmountFromUint64(100), nil, time.Now())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	e.ProcessVote(testAccount(1), FinalTimestamp, testHash(0xAA), primitives.AmountFromUint64(1000), primitives.AmountFromUint64(1))
	if e.State() != Confirmed {
		t.Fatalf("expected election confirmed, got %s", e.State())
	}

	// Same digit-count bucket as the confirmed 100-balance election
	// above, so the newcomer competes for the same, already-full bucket.
	_, err = a.Insert(testHash(2), Priority, primitives.AmountFromUint64(150), nil, time.Now())
	if err != ErrContainerFull {
		t.Fatalf("expected ErrContainerFull since the only bucket occupant is confirmed, got %v", err)
	}
}

func TestFindByHashResolvesRootAndForkCandidates(t *testing.T) {
	a := NewAEC(DefaultConfig())
	root := testHash(1)
	if _, err := a.Insert(root, Priority, primitives.AmountFromUint64(100), nil, time.Now()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if e, ok := a.FindByHash(root); !ok || e.Root != root {
		t.Fatalf("expected FindByHash(root) to resolve the election")
	}

	fork := testHash(0xFE)
	a.RegisterCandidate(fork, root)
	if e, ok := a.FindByHash(fork); !ok || e.Root != root {
		t.Fatalf("expected FindByHash(fork) to resolve to the same election")
	}

	a.Cancel(root)
	if _, ok := a.FindByHash(root); ok {
		t.Fatalf("expected byHash entry for root pruned after Cancel")
	}
	if _, ok := a.FindByHash(fork); ok {
		t.Fatalf("expected byHash entry for fork candidate pruned after Cancel")
	}
}
