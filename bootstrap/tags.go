package bootstrap

import (
	"errors"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/wire"
)

// ErrUnknownTag is returned when an incoming AscPullAck's id has no
// live tag — it is either a duplicate reply, a reply that arrived
// after BootstrapTagDuration, or was never requested.
var ErrUnknownTag = errors.New("bootstrap: ack id has no live tag")

// Tag records what a client is waiting to hear back about for one
// outstanding AscPullReq.
type Tag struct {
	Account primitives.Account
	Kind    wire.AscPullKind
	Issued  time.Time
}

// TagTable tracks outstanding id→Tag correlations for in-flight
// AscPullReq messages.
type TagTable struct {
	mu   sync.Mutex
	next uint64
	tags map[uint64]Tag
}

// NewTagTable builds an empty TagTable.
func NewTagTable() *TagTable {
	return &TagTable{tags: make(map[uint64]Tag)}
}

// Issue allocates a fresh correlation id, records its tag, and returns
// the id to stamp onto the outgoing AscPullReq.
func (tt *TagTable) Issue(account primitives.Account, kind wire.AscPullKind, now time.Time) uint64 {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.next++
	id := tt.next
	tt.tags[id] = Tag{Account: account, Kind: kind, Issued: now}
	return id
}

// Resolve consumes and returns the tag for id, reporting ErrUnknownTag
// if none is live (already resolved, expired, or never issued) — per
// spec.md's "replies without a live tag are dropped".
func (tt *TagTable) Resolve(id uint64, now time.Time) (Tag, error) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tag, ok := tt.tags[id]
	if !ok {
		return Tag{}, ErrUnknownTag
	}
	delete(tt.tags, id)
	if now.Sub(tag.Issued) > BootstrapTagDuration {
		return Tag{}, ErrUnknownTag
	}
	return tag, nil
}

// ExpireOlderThan drops every outstanding tag issued before cutoff,
// e.g. run periodically alongside the network cleanup loop.
func (tt *TagTable) ExpireOlderThan(cutoff time.Time) int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	removed := 0
	for id, tag := range tt.tags {
		if tag.Issued.Before(cutoff) {
			delete(tt.tags, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of currently outstanding tags.
func (tt *TagTable) Len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.tags)
}
