// Package broadcaster re-broadcasts locally-created blocks until they
// are observed cemented or rolled back: a bounded FIFO of pending
// entries, each re-sent on a fixed interval to every principal
// representative (bypassing the rate limiter entirely) and a fanout
// sample of ordinary peers (shaped by a token-bucket limiter).
package broadcaster

import (
	"container/list"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/internal/metrics"
	"github.com/stjet/rsban-node-sub005/netio"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// BroadcastInterval is how often a still-pending entry is re-sent.
const BroadcastInterval = 60 * time.Second

// DefaultCapacity bounds how many locally-created blocks are tracked
// for re-broadcast at once.
const DefaultCapacity = 1024

// DefaultFanout is how many non-principal-representative peers receive
// each re-broadcast round.
const DefaultFanout = 8

// Target is a destination a broadcast payload can be sent to.
type Target interface {
	TrySend(tt netio.TrafficType, payload []byte) error
}

// PeerSource supplies the current principal representative set (which
// always receives every broadcast, limiter bypassed) and a fanout
// sample of the remaining peers.
type PeerSource interface {
	PrincipalRepresentatives() []Target
	FanoutSample(n int) []Target
}

type entry struct {
	hash     primitives.Hash
	payload  []byte
	lastSent time.Time
}

// Broadcaster holds the bounded FIFO of pending locally-created blocks
// and drives their periodic re-send.
type Broadcaster struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	byHash   map[primitives.Hash]*list.Element

	limiter *netio.Limiter
	peers   PeerSource
}

// New builds a Broadcaster with the given capacity, rate-limiting
// fanout sends through a token bucket configured with rateBytesPerSec
// and burstRatio — the same Limiter type netio uses for channel
// bandwidth shaping.
func New(capacity int, rateBytesPerSec, burstRatio float64, peers PeerSource) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Broadcaster{
		capacity: capacity,
		order:    list.New(),
		byHash:   make(map[primitives.Hash]*list.Element),
		limiter:  netio.NewLimiter(rateBytesPerSec, burstRatio),
		peers:    peers,
	}
}

// Insert queues a locally-created block for re-broadcast. If the
// buffer is at capacity, the oldest entry is evicted to make room —
// the reference behavior for a bounded FIFO of fire-and-forget
// rebroadcast state, not a correctness-critical record.
func (b *Broadcaster) Insert(hash primitives.Hash, payload []byte, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.byHash[hash]; exists {
		return
	}
	if b.order.Len() >= b.capacity {
		oldest := b.order.Front()
		if oldest != nil {
			e := oldest.Value.(*entry)
			delete(b.byHash, e.hash)
			b.order.Remove(oldest)
		}
	}

	el := b.order.PushBack(&entry{hash: hash, payload: payload, lastSent: now})
	b.byHash[hash] = el
}

// Remove drops hash from the pending set once it is observed cemented
// or rolled back — either way, it no longer needs re-broadcasting.
func (b *Broadcaster) Remove(hash primitives.Hash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.byHash[hash]; ok {
		b.order.Remove(el)
		delete(b.byHash, hash)
	}
}

// Len reports how many entries are currently pending re-broadcast.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order.Len()
}

// Tick re-sends every entry whose last send is at least
// BroadcastInterval old: full fanout to every principal representative
// (rate-limiter bypassed, since PR connections are never throttled),
// plus a DefaultFanout sample of ordinary peers shaped by the limiter.
func (b *Broadcaster) Tick(now time.Time) {
	var due []*entry
	b.mu.Lock()
	for el := b.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if now.Sub(e.lastSent) >= BroadcastInterval {
			e.lastSent = now
			due = append(due, e)
		}
	}
	b.mu.Unlock()

	if len(due) == 0 || b.peers == nil {
		return
	}

	reps := b.peers.PrincipalRepresentatives()
	fanout := b.peers.FanoutSample(DefaultFanout)

	for _, e := range due {
		for _, rep := range reps {
			_ = rep.TrySend(netio.VoteRebroadcast, e.payload)
		}
		for _, peer := range fanout {
			if ok, _ := b.limiter.TryToFulfill(len(e.payload)); !ok {
				metrics.Inc(metrics.StatBroadcast, "fanout_throttled", metrics.DirectionOut)
				continue
			}
			_ = peer.TrySend(netio.VoteRebroadcast, e.payload)
		}
	}
}

// RunLoop ticks the Broadcaster every BroadcastInterval until done is
// closed.
func (b *Broadcaster) RunLoop(done <-chan struct{}) {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			b.Tick(now)
		}
	}
}
