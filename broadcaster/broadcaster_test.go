package broadcaster

import (
	"testing"
	"time"

	"github.com/stjet/rsban-node-sub005/netio"
	"github.com/stjet/rsban-node-sub005/primitives"
)

type recordingTarget struct {
	sent [][]byte
}

func (t *recordingTarget) TrySend(tt netio.TrafficType, payload []byte) error {
	t.sent = append(t.sent, payload)
	return nil
}

type fakePeers struct {
	reps    []Target
	fanout  []Target
}

func (p fakePeers) PrincipalRepresentatives() []Target { return p.reps }
func (p fakePeers) FanoutSample(n int) []Target        { return p.fanout }

func testHash(b byte) primitives.Hash {
	var h primitives.Hash
	h[0] = b
	return h
}

func TestInsertAndTickBroadcastsToReps(t *testing.T) {
	rep := &recordingTarget{}
	b := New(DefaultCapacity, 1<<30, 2, fakePeers{reps: []Target{rep}})

	now := time.Now()
	b.Insert(testHash(1), []byte("block"), now)
	b.Tick(now.Add(BroadcastInterval + time.Second))

	if len(rep.sent) != 1 {
		t.Fatalf("expected one broadcast to the principal representative, got %d", len(rep.sent))
	}
}

func TestTickSkipsEntriesNotYetDue(t *testing.T) {
	rep := &recordingTarget{}
	b := New(DefaultCapacity, 1<<30, 2, fakePeers{reps: []Target{rep}})

	now := time.Now()
	b.Insert(testHash(1), []byte("block"), now)
	b.Tick(now.Add(time.Second))

	if len(rep.sent) != 0 {
		t.Fatalf("expected no broadcast before BroadcastInterval elapses")
	}
}

func TestRemoveStopsFurtherBroadcast(t *testing.T) {
	rep := &recordingTarget{}
	b := New(DefaultCapacity, 1<<30, 2, fakePeers{reps: []Target{rep}})

	now := time.Now()
	h := testHash(1)
	b.Insert(h, []byte("block"), now)
	b.Remove(h)

	if b.Len() != 0 {
		t.Fatalf("expected entry removed")
	}
	b.Tick(now.Add(BroadcastInterval + time.Second))
	if len(rep.sent) != 0 {
		t.Fatalf("expected no broadcast after removal")
	}
}

func TestInsertEvictsOldestWhenAtCapacity(t *testing.T) {
	b := New(2, 1<<30, 2, fakePeers{})
	now := time.Now()
	b.Insert(testHash(1), []byte("a"), now)
	b.Insert(testHash(2), []byte("b"), now)
	b.Insert(testHash(3), []byte("c"), now)

	if b.Len() != 2 {
		t.Fatalf("expected capacity to cap pending entries at 2, got %d", b.Len())
	}
	if _, ok := b.byHash[testHash(1)]; ok {
		t.Fatalf("expected oldest entry evicted")
	}
}

func TestFanoutRespectsLimiter(t *testing.T) {
	fanoutTarget := &recordingTarget{}
	b := New(DefaultCapacity, 1, 1, fakePeers{fanout: []Target{fanoutTarget}})

	now := time.Now()
	// Exhaust the tiny bucket first.
	b.limiter.TryToFulfill(1 << 20)

	b.Insert(testHash(1), make([]byte, 1<<20), now)
	b.Tick(now.Add(BroadcastInterval + time.Second))

	if len(fanoutTarget.sent) != 0 {
		t.Fatalf("expected fanout send to be throttled by the limiter")
	}
}
