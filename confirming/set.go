// Package confirming implements the confirming set: the worker that
// walks an account chain forward from its last cemented block up to a
// newly-confirmed hash, marking every intervening block cemented and
// advancing confirmation height.
package confirming

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/ledger"
	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/storage"
)

// Request is one (account, target hash) work item: cement every block
// on account's chain up to and including target.
type Request struct {
	Account primitives.Account
	Target  primitives.Hash
}

// CementedEvent is delivered once per block newly cemented.
type CementedEvent struct {
	Account     primitives.Account
	Hash        primitives.Hash
	Height      uint64
	// ActiveQuorum is true if this block's own election reached quorum
	// (vs. being cemented purely because an ancestor needed it, which
	// is reported as an inactive confirmation height advance instead).
	ActiveQuorum bool
}

// Observer receives confirming-set lifecycle events.
type Observer interface {
	// OnCemented fires once per newly-cemented block, either as an
	// active-quorum confirmation or (ActiveQuorum=false) as an
	// inactive confirmation-height advance from dependency cementation.
	OnCemented(CementedEvent)
	// OnAlreadyCemented fires when a request's target is already at or
	// below the account's current confirmation height: a no-op.
	OnAlreadyCemented(account primitives.Account, hash primitives.Hash)
}

// Config bounds how large a single write transaction may grow before
// the worker commits and starts a new one.
type Config struct {
	BatchWriteSize       int
	BatchSeparateMinTime time.Duration
}

func DefaultConfig() Config {
	return Config{BatchWriteSize: 256, BatchSeparateMinTime: 250 * time.Millisecond}
}

// ElectionAlive reports whether an active election still exists for a
// hash, distinguishing active_quorum confirmations (the block's own
// election reached quorum) from inactive_conf_height advances (cemented
// purely because a descendant needed it).
type ElectionAlive func(hash primitives.Hash) bool

// Set is the confirming set worker: a FIFO queue of requests drained
// by exactly one goroutine, matching the single confirming-set writer
// thread described for this component.
type Set struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  *list.List
	closed bool

	cfg    Config
	store  storage.Store
	ledger *ledger.Ledger
	alive  ElectionAlive

	observers []Observer
}

func New(store storage.Store, l *ledger.Ledger, alive ElectionAlive, cfg Config) *Set {
	s := &Set{
		queue:  list.New(),
		cfg:    cfg,
		store:  store,
		ledger: l,
		alive:  alive,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *Set) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Enqueue adds a (account, target) request to the tail of the queue.
func (s *Set) Enqueue(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue.PushBack(req)
	s.cond.Signal()
}

// Close stops accepting new requests; the worker returns once every
// request already queued has been processed.
func (s *Set) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}

func (s *Set) pop() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.queue.Len() == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.queue.Len() == 0 {
		return Request{}, false
	}
	front := s.queue.Front()
	s.queue.Remove(front)
	return front.Value.(Request), true
}

// Run drains the queue until ctx is cancelled or Close is called. It
// is meant to run on exactly one goroutine.
func (s *Set) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	for {
		req, ok := s.pop()
		if !ok {
			return
		}
		s.process(req)
	}
}

// process walks req.Account's chain from its current confirmation
// height up to req.Target, cementing each block along the way,
// batched into one or more write transactions.
func (s *Set) process(req Request) {
	rtx := s.store.BeginRead()
	confInfo, err := s.ledger.ConfirmationHeight(rtx, req.Account)
	if err != nil {
		rtx.Discard()
		return
	}
	targetBlock, targetSb, err := s.ledger.GetBlock(rtx, req.Target)
	rtx.Discard()
	if err != nil {
		return
	}
	if targetSb.Height <= confInfo.Height {
		for _, o := range s.observers {
			o.OnAlreadyCemented(req.Account, req.Target)
		}
		return
	}

	s.walkAndCement(req.Account, targetBlock.Hash(), targetSb.Height, confInfo.Height)
}

// walkAndCement performs the actual backward-collect/forward-cement
// pass inside batched write transactions.
func (s *Set) walkAndCement(account primitives.Account, target primitives.Hash, targetHeight, startHeight uint64) {
	rtx := s.store.BeginRead()
	hashes := make([]primitives.Hash, 0, targetHeight-startHeight)
	cur := target
	for {
		blk, sb, err := s.ledger.GetBlock(rtx, cur)
		if err != nil {
			rtx.Discard()
			return
		}
		hashes = append(hashes, cur)
		if sb.Height <= startHeight+1 {
			break
		}
		cur = blk.PreviousField
	}
	rtx.Discard()

	// hashes is newest-first; reverse to ascending height order.
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}

	height := startHeight
	wtx, err := s.store.BeginWrite()
	if err != nil {
		return
	}
	var pending []CementedEvent
	lastCommit := time.Now()

	flush := func() bool {
		if len(pending) == 0 {
			wtx.Discard()
			return true
		}
		if err := wtx.Commit(); err != nil {
			return false
		}
		for _, e := range pending {
			s.notify(e)
		}
		pending = pending[:0]
		return true
	}

	for _, h := range hashes {
		height++
		if err := s.ledger.SetConfirmationHeight(wtx, account, ledger.ConfirmationHeightInfo{Height: height, Frontier: h}); err != nil {
			wtx.Discard()
			return
		}

		activeQuorum := s.alive != nil && s.alive(h)
		pending = append(pending, CementedEvent{Account: account, Hash: h, Height: height, ActiveQuorum: activeQuorum})

		if len(pending) >= s.cfg.BatchWriteSize || time.Since(lastCommit) >= s.cfg.BatchSeparateMinTime {
			if !flush() {
				return
			}
			wtx, err = s.store.BeginWrite()
			if err != nil {
				return
			}
			lastCommit = time.Now()
		}
	}
	flush()
}

func (s *Set) notify(event CementedEvent) {
	s.mu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, o := range observers {
		o.OnCemented(event)
	}
}
