package blockproc

import (
	"context"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/ledger"
	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/storage"
)

// ProcessedEvent is delivered to observers after a block has been
// attempted against the ledger, successfully or not.
type ProcessedEvent struct {
	Block  *blocks.StateBlock
	Source Source
	Result blocks.ProcessResult
}

// RolledBackEvent is delivered to observers for each hash unwound by
// a rollback, so dependent elections can be cancelled.
type RolledBackEvent struct {
	Hashes []primitives.Hash
}

// Observer receives block processor lifecycle events. Implementations
// must not block significantly: the processor calls observers
// synchronously between pops.
type Observer interface {
	OnProcessed(ProcessedEvent)
	OnRolledBack(RolledBackEvent)
}

// RollbackRequest asks the processor to unwind hash on its next
// iteration, interleaved with ordinary block processing.
type RollbackRequest struct {
	Hash primitives.Hash
}

// Processor is the single-goroutine consumer that drains Queue into
// the ledger. One processor owns one ledger; concurrent processors
// over the same ledger would violate the single-writer transaction
// model.
type Processor struct {
	queue     *Queue
	store     storage.Store
	ledger    *ledger.Ledger
	observers []Observer
	rollbacks chan RollbackRequest
}

func NewProcessor(queue *Queue, store storage.Store, l *ledger.Ledger) *Processor {
	return &Processor{
		queue:     queue,
		store:     store,
		ledger:    l,
		rollbacks: make(chan RollbackRequest, 256),
	}
}

// AddObserver registers an observer. Not safe to call concurrently
// with Run.
func (p *Processor) AddObserver(o Observer) {
	p.observers = append(p.observers, o)
}

// RequestRollback enqueues a rollback to be processed on the next
// iteration of Run's loop, ahead of ordinary block processing.
func (p *Processor) RequestRollback(hash primitives.Hash) {
	p.rollbacks <- RollbackRequest{Hash: hash}
}

// Run drains the queue until ctx is cancelled. It is meant to be
// called from exactly one goroutine, matching the single processing
// thread described for the block processor.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.rollbacks:
			p.handleRollback(req)
			continue
		default:
		}

		block, source, ok := p.queue.Pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-p.queue.Notify():
				continue
			case req := <-p.rollbacks:
				p.handleRollback(req)
				continue
			}
		}

		sb, isState := block.(*blocks.StateBlock)
		if !isState {
			// Legacy blocks are only ever read during bootstrap chain
			// walks, never newly applied; nothing to do here.
			continue
		}
		p.processOne(sb, source)
	}
}

func (p *Processor) processOne(block *blocks.StateBlock, source Source) {
	wtx, err := p.store.BeginWrite()
	if err != nil {
		return
	}
	result, err := p.ledger.Apply(wtx, block)
	if err != nil {
		wtx.Rollback()
		return
	}
	if result == blocks.Progress {
		if err := wtx.Commit(); err != nil {
			return
		}
	} else {
		wtx.Rollback()
	}

	event := ProcessedEvent{Block: block, Source: source, Result: result}
	for _, o := range p.observers {
		o.OnProcessed(event)
	}
}

func (p *Processor) handleRollback(req RollbackRequest) {
	wtx, err := p.store.BeginWrite()
	if err != nil {
		return
	}
	hashes, err := p.ledger.Rollback(wtx, req.Hash)
	if err != nil {
		wtx.Rollback()
		return
	}
	if err := wtx.Commit(); err != nil {
		return
	}
	event := RolledBackEvent{Hashes: hashes}
	for _, o := range p.observers {
		o.OnRolledBack(event)
	}
}
