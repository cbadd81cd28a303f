package election

import (
	"testing"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func testHash(b byte) primitives.Hash {
	var h primitives.Hash
	h[0] = b
	return h
}

func testAccount(b byte) primitives.Account {
	var a primitives.Account
	a[0] = b
	return a
}

// TestQuorumAtExactlyDelta mirrors the spec scenario: quorum_minimum
// 100, quorum_percent 50 → quorum_delta = 50. Two reps cast final
// votes worth 30 and 20 for the same block; once their combined final
// weight reaches exactly 50, the election confirms.
func TestQuorumAtExactlyDelta(t *testing.T) {
	e := New(testHash(1), Manual, nil, time.Now())
	h := testHash(0xAA)
	quorumDelta := primitives.AmountFromUint64(50)

	confirmed := e.ProcessVote(testAccount(1), FinalTimestamp, h, primitives.AmountFromUint64(30), quorumDelta)
	if confirmed {
		t.Fatalf("should not confirm at weight 30 < delta 50")
	}
	confirmed = e.ProcessVote(testAccount(2), FinalTimestamp, h, primitives.AmountFromUint64(20), quorumDelta)
	if !confirmed {
		t.Fatalf("expected confirmation once final weight reaches exactly quorum_delta")
	}
	if e.State() != Confirmed {
		t.Fatalf("expected Confirmed state, got %s", e.State())
	}
	winner, ok := e.Winner()
	if !ok || winner != h {
		t.Fatalf("expected winner %x, got %x ok=%v", h, winner, ok)
	}
}

func TestReplayVoteDropped(t *testing.T) {
	e := New(testHash(1), Manual, nil, time.Now())
	h := testHash(0xAA)
	rep := testAccount(1)
	delta := primitives.AmountFromUint64(1_000_000)

	e.ProcessVote(rep, 100, h, primitives.AmountFromUint64(10), delta)
	before := e.Tally()[h]

	// Older timestamp: must be dropped, not double-counted or reverted.
	e.ProcessVote(rep, 50, h, primitives.AmountFromUint64(999), delta)
	after := e.Tally()[h]
	if before.Cmp(after) != 0 {
		t.Fatalf("stale vote mutated tally: before=%s after=%s", before, after)
	}
}

func TestRepSwitchMovesWeight(t *testing.T) {
	e := New(testHash(1), Manual, nil, time.Now())
	rep := testAccount(1)
	h1 := testHash(0xAA)
	h2 := testHash(0xBB)
	delta := primitives.AmountFromUint64(1_000_000)

	e.ProcessVote(rep, 100, h1, primitives.AmountFromUint64(10), delta)
	e.ProcessVote(rep, 200, h2, primitives.AmountFromUint64(10), delta)

	tally := e.Tally()
	if !tally[h1].IsZero() {
		t.Fatalf("expected weight withdrawn from h1, got %s", tally[h1])
	}
	if tally[h2].Cmp(primitives.AmountFromUint64(10)) != 0 {
		t.Fatalf("expected weight moved to h2, got %s", tally[h2])
	}
}

func TestTieBreakPrefersCurrentWinner(t *testing.T) {
	h1 := testHash(0x10)
	h2 := testHash(0x01) // smaller hash, but not the current winner
	e := New(testHash(1), Manual, nil, time.Now())
	e.winner = h1
	delta := primitives.AmountFromUint64(1_000_000)

	e.ProcessVote(testAccount(1), 100, h1, primitives.AmountFromUint64(10), delta)
	e.ProcessVote(testAccount(2), 100, h2, primitives.AmountFromUint64(10), delta)

	winner, _ := e.Winner()
	if winner != h1 {
		t.Fatalf("expected tie-break to keep current winner h1, got %x", winner)
	}
}

func TestCancelledElectionIgnoresVotes(t *testing.T) {
	e := New(testHash(1), Manual, nil, time.Now())
	e.Cancel()
	confirmed := e.ProcessVote(testAccount(1), FinalTimestamp, testHash(0xAA), primitives.AmountFromUint64(1000), primitives.AmountFromUint64(1))
	if confirmed {
		t.Fatalf("cancelled election must not confirm")
	}
	if e.State() != Cancelled {
		t.Fatalf("expected state to stay Cancelled, got %s", e.State())
	}
}

func TestCheckExpired(t *testing.T) {
	e := New(testHash(1), Hinted, nil, time.Now().Add(-time.Minute))
	if !e.CheckExpired(time.Now()) {
		t.Fatalf("expected Hinted election past its 30s TTL to expire")
	}
	if e.State() != ExpiredUnconfirmed {
		t.Fatalf("expected ExpiredUnconfirmed, got %s", e.State())
	}
}
