package bootstrap

import (
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/wire"
)

// PullBatchSize is how many blocks a single Blocks pull requests.
const PullBatchSize = 32

// FrontierLookup resolves an account's current chain frontier (or the
// zero hash if the account is entirely unknown locally, in which case
// the pull starts from open).
type FrontierLookup interface {
	Frontier(account primitives.Account) (primitives.Hash, bool)
}

// Sender transmits an outgoing AscPullReq to some peer.
type Sender interface {
	SendPull(req wire.AscPullReq) error
}

// BlockSink receives blocks resolved by a successful pull, handing
// them to the block processor with Source Bootstrap.
type BlockSink interface {
	SubmitBootstrapBlock(entry wire.BlockEntry)
}

// Runner drives the ascending-bootstrap loop: pick the highest
// priority ready account, issue a Blocks pull for it, and route the
// eventual ack's blocks to the block processor.
type Runner struct {
	tracker   *Tracker
	tags      *TagTable
	frontiers FrontierLookup
	sender    Sender
	sink      BlockSink
}

// NewRunner builds a Runner over the given collaborators.
func NewRunner(tracker *Tracker, tags *TagTable, frontiers FrontierLookup, sender Sender, sink BlockSink) *Runner {
	return &Runner{tracker: tracker, tags: tags, frontiers: frontiers, sender: sender, sink: sink}
}

// RunOnce issues one pull for the current highest-priority ready
// account, if any. It reports whether a pull was issued.
func (r *Runner) RunOnce(now time.Time) bool {
	account, _, ok := r.tracker.NextReady()
	if !ok {
		return false
	}

	start, _ := r.frontiers.Frontier(account)
	id := r.tags.Issue(account, wire.AscPullBlocks, now)

	req := wire.AscPullReq{
		ID:   id,
		Kind: wire.AscPullBlocks,
		Blocks: &wire.BlocksReq{
			Start:     start,
			Count:     PullBatchSize,
			Ascending: true,
		},
	}
	if err := r.sender.SendPull(req); err != nil {
		r.tracker.NoProgress(account)
		return false
	}
	return true
}

// HandleAck resolves ack against the tag table and, on a live Blocks
// tag, walks ack.Blocks up to the NotABlock terminator (spec.md S6),
// submitting each real block entry to the sink and updating the
// account's priority by whether the pull made progress.
func (r *Runner) HandleAck(ack wire.AscPullAck, now time.Time) error {
	if err := ack.Validate(); err != nil {
		return err
	}
	tag, err := r.tags.Resolve(ack.ID, now)
	if err != nil {
		return err
	}

	delivered := 0
	for _, entry := range ack.Blocks {
		if entry.TypeTag == wire.NotABlock {
			break
		}
		r.sink.SubmitBootstrapBlock(entry)
		delivered++
	}

	if delivered > 0 {
		r.tracker.Succeeded(tag.Account)
	} else {
		r.tracker.NoProgress(tag.Account)
	}
	return nil
}

// RunLoop calls RunOnce on every tick of interval until ctx-like done
// is closed. Kept as an explicit ticker loop (not a goroutine-per-call
// scheduler) matching the Election Engine scheduler classes' own
// one-ticker-per-class idiom.
func (r *Runner) RunLoop(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			r.RunOnce(now)
		}
	}
}
