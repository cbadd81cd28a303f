package wire

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/voteroute"
)

func TestConfirmAckExtensionsRoundTripHashCount(t *testing.T) {
	v := &voteroute.Vote{Hashes: make([]primitives.Hash, 5)}
	ack := &ConfirmAck{Vote: v}

	ext, err := ack.ExtensionsFor()
	if err != nil {
		t.Fatalf("extensions for: %v", err)
	}
	if got := HashCountFromExtensions(ext); got != 5 {
		t.Fatalf("expected count 5, got %d", got)
	}
}

func TestConfirmAckRejectsTooManyHashes(t *testing.T) {
	v := &voteroute.Vote{Hashes: make([]primitives.Hash, voteroute.MaxHashesPerVote+1)}
	ack := &ConfirmAck{Vote: v}
	if _, err := ack.ExtensionsFor(); err != ErrTooManyHashesForNibble {
		t.Fatalf("expected ErrTooManyHashesForNibble, got %v", err)
	}
}
