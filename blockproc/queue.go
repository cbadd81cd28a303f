// Package blockproc implements the block processor: a single
// consuming goroutine draining a bounded, per-source-class priority
// queue into the ledger and fanning the result out to observers.
package blockproc

import (
	"container/heap"
	"errors"
	"sync"

	"github.com/stjet/rsban-node-sub005/blocks"
)

// Source classifies where a block entered the system from. Class
// ordering below doubles as queue priority: Forced drains first,
// BootstrapLegacy last.
type Source int

const (
	SourceBootstrapLegacy Source = iota
	SourceBootstrap
	SourceLocal
	SourcePriority
	SourceForced
)

func (s Source) String() string {
	switch s {
	case SourceBootstrapLegacy:
		return "bootstrap_legacy"
	case SourceBootstrap:
		return "bootstrap"
	case SourceLocal:
		return "local"
	case SourcePriority:
		return "priority"
	case SourceForced:
		return "forced"
	default:
		return "unknown"
	}
}

// ErrQueueFull is returned by Enqueue when the queue is at its soft
// capacity and the entry's source is not Forced.
var ErrQueueFull = errors.New("blockproc: queue soft-full")

// QueueConfig bounds the queue's overall size and gives each source a
// quota of how much of that size it may occupy, so a bootstrap flood
// cannot starve locally-created or network-priority blocks.
type QueueConfig struct {
	SoftMax int
	Quotas  map[Source]int
}

// DefaultQueueConfig reserves the bulk of capacity for priority
// traffic (freshly published network blocks) while still leaving room
// for bootstrap and local blocks to make progress.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		SoftMax: 64 * 1024,
		Quotas: map[Source]int{
			SourcePriority:        32 * 1024,
			SourceBootstrap:       16 * 1024,
			SourceBootstrapLegacy: 8 * 1024,
			SourceLocal:           8 * 1024,
		},
	}
}

// entry wraps a block with its source and the queue-internal heap
// index, the same shape as the teacher's QueueEntry/tipHeap pairing.
type entry struct {
	block  blocks.Block
	source Source
	seq    uint64 // insertion order, for stable ties within a source
	index  int
}

// sourceHeap orders entries by source priority (descending Source
// value pops first) with insertion order as a tiebreak.
type sourceHeap []*entry

func (h sourceHeap) Len() int { return len(h) }
func (h sourceHeap) Less(i, j int) bool {
	if h[i].source != h[j].source {
		return h[i].source > h[j].source
	}
	return h[i].seq < h[j].seq
}
func (h sourceHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *sourceHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *sourceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Queue is the bounded, per-source-quota priority queue the block
// processor drains. It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	cfg    QueueConfig
	h      sourceHeap
	counts map[Source]int
	seq    uint64
	notify chan struct{}
}

func NewQueue(cfg QueueConfig) *Queue {
	q := &Queue{
		cfg:    cfg,
		counts: make(map[Source]int),
		notify: make(chan struct{}, 1),
	}
	heap.Init(&q.h)
	return q
}

// Enqueue adds a block under the given source. Forced entries are
// always accepted; any other source is rejected once the queue is at
// SoftMax overall or the source has exhausted its quota.
func (q *Queue) Enqueue(block blocks.Block, source Source) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if source != SourceForced {
		if len(q.h) >= q.cfg.SoftMax {
			return ErrQueueFull
		}
		if quota, ok := q.cfg.Quotas[source]; ok && q.counts[source] >= quota {
			return ErrQueueFull
		}
	}

	q.seq++
	heap.Push(&q.h, &entry{block: block, source: source, seq: q.seq})
	q.counts[source]++
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes and returns the highest-priority entry, or ok=false if
// the queue is empty.
func (q *Queue) Pop() (blocks.Block, Source, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return nil, 0, false
	}
	e := heap.Pop(&q.h).(*entry)
	q.counts[e.source]--
	return e.block, e.source, true
}

// Len returns the current total queue size.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// Notify returns a channel that receives a value whenever an entry is
// enqueued into a previously non-empty-or-empty queue, letting the
// processor goroutine block on it between polls instead of busy-
// waiting.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}
