package bootstrap

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func testAccount(b byte) primitives.Account {
	var a primitives.Account
	a[0] = b
	return a
}

func TestPrioritizeThenSucceedIncreasesPriority(t *testing.T) {
	tr := NewTracker()
	acct := testAccount(1)
	tr.Prioritize(acct)

	_, p0, ok := tr.NextReady()
	if !ok || p0 != InitialPriority {
		t.Fatalf("expected initial priority %v, got %v ok=%v", InitialPriority, p0, ok)
	}

	tr.Succeeded(acct)
	_, p1, _ := tr.NextReady()
	if p1 != InitialPriority+PriorityIncrease {
		t.Fatalf("expected priority to increase, got %v", p1)
	}
}

func TestNoProgressDecaysAndEvicts(t *testing.T) {
	tr := NewTracker()
	acct := testAccount(1)
	tr.Prioritize(acct)

	for i := 0; i < 10; i++ {
		tr.NoProgress(acct)
	}
	if tr.PriorityLen() != 0 {
		t.Fatalf("expected account evicted after repeated no-progress decay")
	}
}

func TestBlockAndResolveDependencyRekeys(t *testing.T) {
	tr := NewTracker()
	acct := testAccount(1)
	var dep primitives.Hash
	dep[0] = 0xAA

	tr.Prioritize(acct)
	tr.Block(acct, dep, 4.0)

	if tr.PriorityLen() != 0 {
		t.Fatalf("expected blocked account removed from priority table")
	}
	if tr.BlockingLen() != 1 {
		t.Fatalf("expected 1 blocking entry, got %d", tr.BlockingLen())
	}

	tr.ResolveDependency(dep, acct)
	if tr.BlockingLen() != 0 {
		t.Fatalf("expected blocking entry cleared after resolution")
	}
	gotAcct, p, ok := tr.NextReady()
	if !ok || gotAcct != acct || p != 4.0 {
		t.Fatalf("expected account restored with its blocked priority 4.0, got %+v %v %v", gotAcct, p, ok)
	}
}

func TestNextReadyPicksHighestPriority(t *testing.T) {
	tr := NewTracker()
	low, high := testAccount(1), testAccount(2)
	tr.Prioritize(low)
	tr.Prioritize(high)
	tr.Succeeded(high)

	got, _, ok := tr.NextReady()
	if !ok || got != high {
		t.Fatalf("expected highest-priority account chosen")
	}
}
