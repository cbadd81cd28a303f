package bootstrap

import (
	"testing"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/wire"
)

type fakeFrontiers struct{}

func (fakeFrontiers) Frontier(primitives.Account) (primitives.Hash, bool) { return primitives.Hash{}, false }

type fakeSender struct {
	sent []wire.AscPullReq
}

func (s *fakeSender) SendPull(req wire.AscPullReq) error {
	s.sent = append(s.sent, req)
	return nil
}

type fakeSink struct {
	got []wire.BlockEntry
}

func (s *fakeSink) SubmitBootstrapBlock(e wire.BlockEntry) { s.got = append(s.got, e) }

func TestRunOnceIssuesPullForHighestPriorityAccount(t *testing.T) {
	tr := NewTracker()
	tr.Prioritize(testAccount(1))
	tags := NewTagTable()
	sender := &fakeSender{}
	sink := &fakeSink{}
	r := NewRunner(tr, tags, fakeFrontiers{}, sender, sink)

	if !r.RunOnce(time.Now()) {
		t.Fatalf("expected a pull to be issued")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one pull sent, got %d", len(sender.sent))
	}
	if sender.sent[0].Kind != wire.AscPullBlocks {
		t.Fatalf("expected Blocks pull kind")
	}
}

func TestRunOnceNoopWhenNothingReady(t *testing.T) {
	r := NewRunner(NewTracker(), NewTagTable(), fakeFrontiers{}, &fakeSender{}, &fakeSink{})
	if r.RunOnce(time.Now()) {
		t.Fatalf("expected no pull when tracker is empty")
	}
}

func TestHandleAckTerminatorStopsAtNotABlockAndDeliversBlocks(t *testing.T) {
	tr := NewTracker()
	acct := testAccount(1)
	tr.Prioritize(acct)
	tags := NewTagTable()
	sink := &fakeSink{}
	r := NewRunner(tr, tags, fakeFrontiers{}, &fakeSender{}, sink)

	now := time.Now()
	id := tags.Issue(acct, wire.AscPullBlocks, now)

	ack := wire.AscPullAck{
		ID:   id,
		Kind: wire.AscPullBlocks,
		Blocks: []wire.BlockEntry{
			{TypeTag: 1, Payload: []byte("open")},
			{TypeTag: 1, Payload: []byte("b1")},
			{TypeTag: 1, Payload: []byte("b2")},
			{TypeTag: wire.NotABlock},
		},
	}

	if err := r.HandleAck(ack, now); err != nil {
		t.Fatalf("HandleAck: %v", err)
	}
	if len(sink.got) != 3 {
		t.Fatalf("expected 3 blocks delivered before the terminator, got %d", len(sink.got))
	}
	if _, p, ok := tr.NextReady(); !ok || p != InitialPriority+PriorityIncrease {
		t.Fatalf("expected priority to tick up on progress")
	}
}

func TestHandleAckUnknownTagDropped(t *testing.T) {
	r := NewRunner(NewTracker(), NewTagTable(), fakeFrontiers{}, &fakeSender{}, &fakeSink{})
	ack := wire.AscPullAck{ID: 999, Kind: wire.AscPullBlocks}
	if err := r.HandleAck(ack, time.Now()); err != ErrUnknownTag {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestHandleAckExpiredTagDropped(t *testing.T) {
	tr := NewTracker()
	acct := testAccount(1)
	tr.Prioritize(acct)
	tags := NewTagTable()
	r := NewRunner(tr, tags, fakeFrontiers{}, &fakeSender{}, &fakeSink{})

	issuedAt := time.Now().Add(-time.Hour)
	id := tags.Issue(acct, wire.AscPullBlocks, issuedAt)

	ack := wire.AscPullAck{ID: id, Kind: wire.AscPullBlocks}
	if err := r.HandleAck(ack, time.Now()); err != ErrUnknownTag {
		t.Fatalf("expected expired tag to be dropped as unknown, got %v", err)
	}
}
