package voteroute

import (
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// CacheConfig bounds the vote cache: how many distinct reps may have a
// cached vote for the same hash, how many cached votes may exist
// across all hashes combined, and how long an entry survives before
// it is treated as stale.
type CacheConfig struct {
	PerHashCapacity int
	GlobalCapacity  int
	TTL             time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{PerHashCapacity: 128, GlobalCapacity: 8 * 1024, TTL: 5 * time.Minute}
}

type cacheKey struct {
	hash    primitives.Hash
	account primitives.Account
}

// cacheNode is a doubly-linked list node for global LRU eviction,
// mirroring the teacher's signature cache idiom: a map for O(1) lookup
// plus an intrusive list for O(1) eviction of the least-recently-used
// entry once the global cap is exceeded.
type cacheNode struct {
	key        cacheKey
	vote       *Vote
	expiresAt  time.Time
	prev, next *cacheNode
}

// voteCache holds votes received for hashes that have no active
// election yet, so a newly-started election can be seeded with what
// its voters already said instead of waiting for a retransmit.
type voteCache struct {
	mu         sync.Mutex
	cfg        CacheConfig
	nodes      map[cacheKey]*cacheNode
	head, tail *cacheNode
}

func newVoteCache(cfg CacheConfig) *voteCache {
	return &voteCache{cfg: cfg, nodes: make(map[cacheKey]*cacheNode)}
}

// Add records v's vote for hash, replacing any earlier cached vote
// from the same account for the same hash and promoting it to MRU.
func (c *voteCache) Add(v *Vote, hash primitives.Hash, now time.Time) {
	key := cacheKey{hash: hash, account: v.Account}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.nodes[key]; ok {
		existing.vote = v
		existing.expiresAt = now.Add(c.cfg.TTL)
		c.moveToHead(existing)
		return
	}

	if c.countForHashLocked(hash) >= c.cfg.PerHashCapacity {
		if victim := c.oldestForHashLocked(hash); victim != nil {
			c.removeNode(victim)
		}
	}

	node := &cacheNode{key: key, vote: v, expiresAt: now.Add(c.cfg.TTL)}
	c.nodes[key] = node
	c.pushHead(node)

	if len(c.nodes) > c.cfg.GlobalCapacity {
		c.evictTail()
	}
}

func (c *voteCache) countForHashLocked(hash primitives.Hash) int {
	n := 0
	for k := range c.nodes {
		if k.hash == hash {
			n++
		}
	}
	return n
}

// oldestForHashLocked returns the least-recently-used entry for hash
// by walking from the tail, the natural order of the global LRU list.
func (c *voteCache) oldestForHashLocked(hash primitives.Hash) *cacheNode {
	for n := c.tail; n != nil; n = n.prev {
		if n.key.hash == hash {
			return n
		}
	}
	return nil
}

// Drain removes and returns every non-expired cached vote for hash, as
// called once an election starts tracking that hash.
func (c *voteCache) Drain(hash primitives.Hash, now time.Time) []*Vote {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Vote
	var victims []*cacheNode
	for k, n := range c.nodes {
		if k.hash != hash {
			continue
		}
		if now.Before(n.expiresAt) {
			out = append(out, n.vote)
		}
		victims = append(victims, n)
	}
	for _, n := range victims {
		c.removeNode(n)
	}
	return out
}

// Sweep drops every entry past its TTL, meant to run from a periodic
// maintenance goroutine alongside the AEC's own Sweep.
func (c *voteCache) Sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expired []*cacheNode
	for _, n := range c.nodes {
		if !now.Before(n.expiresAt) {
			expired = append(expired, n)
		}
	}
	for _, n := range expired {
		c.removeNode(n)
	}
}

func (c *voteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// --- intrusive doubly-linked-list operations (caller holds c.mu) ---

func (c *voteCache) pushHead(n *cacheNode) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *voteCache) removeNode(n *cacheNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	delete(c.nodes, n.key)
}

func (c *voteCache) moveToHead(n *cacheNode) {
	if c.head == n {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *voteCache) evictTail() {
	if c.tail == nil {
		return
	}
	c.removeNode(c.tail)
}
