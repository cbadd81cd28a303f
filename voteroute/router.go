package voteroute

import (
	"errors"
	"time"

	"github.com/stjet/rsban-node-sub005/election"
	"github.com/stjet/rsban-node-sub005/ledger"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// ErrInvalidVote is returned by Process when a vote's signature does
// not validate against its claimed account.
var ErrInvalidVote = errors.New("voteroute: invalid vote signature")

// ErrTooManyHashes is returned by Process when a vote names no hashes
// or more hashes than the wire protocol allows in one message.
var ErrTooManyHashes = errors.New("voteroute: vote exceeds max hashes per message")

// Router dispatches each hash named by an incoming vote to the
// election tracking it, or caches the vote for a future election if
// none is tracking that hash yet.
type Router struct {
	aec     *election.AEC
	weights *ledger.RepWeights
	quorum  *election.OnlineWeightTracker
	cache   *voteCache
}

func NewRouter(aec *election.AEC, weights *ledger.RepWeights, quorum *election.OnlineWeightTracker, cfg CacheConfig) *Router {
	return &Router{aec: aec, weights: weights, quorum: quorum, cache: newVoteCache(cfg)}
}

// Process validates v and routes each of its hashes to a live
// election, or into the cache when no election exists for that hash
// yet. Returns the set of roots that transitioned to Confirmed as a
// direct result of this vote, already reported to the AEC's observers.
func (r *Router) Process(v *Vote, now time.Time) ([]primitives.Hash, error) {
	if len(v.Hashes) == 0 || len(v.Hashes) > MaxHashesPerVote {
		return nil, ErrTooManyHashes
	}
	if !v.Verify() {
		return nil, ErrInvalidVote
	}

	weight := r.weights.Get(v.Account)
	quorumDelta := r.quorum.QuorumDelta()

	var confirmed []primitives.Hash
	for _, hash := range v.Hashes {
		e, ok := r.aec.FindByHash(hash)
		if !ok {
			r.cache.Add(v, hash, now)
			continue
		}
		if e.ProcessVote(v.Account, v.Timestamp, hash, weight, quorumDelta) {
			r.aec.NotifyConfirmed(e.Root)
			confirmed = append(confirmed, e.Root)
		}
	}
	return confirmed, nil
}

// ActivateCache drains every cached vote for hash into e (the election
// that has just started tracking it, rooted at root) and replays them
// through ProcessVote exactly as Process would have, had the election
// existed when they first arrived. Call this once per newly-started
// election, immediately after the AEC registers it.
func (r *Router) ActivateCache(hash primitives.Hash, root primitives.Hash, e *election.Election, now time.Time) {
	votes := r.cache.Drain(hash, now)
	if len(votes) == 0 {
		return
	}
	quorumDelta := r.quorum.QuorumDelta()
	confirmedAlready := false
	for _, v := range votes {
		weight := r.weights.Get(v.Account)
		if e.ProcessVote(v.Account, v.Timestamp, hash, weight, quorumDelta) {
			confirmedAlready = true
		}
	}
	if confirmedAlready {
		r.aec.NotifyConfirmed(root)
	}
}

// CacheLen reports how many votes are currently held for hashes
// without a tracking election, for diagnostics.
func (r *Router) CacheLen() int {
	return r.cache.Len()
}

// Sweep drops cached votes past their TTL. Meant to run alongside the
// AEC's own periodic Sweep.
func (r *Router) Sweep(now time.Time) {
	r.cache.Sweep(now)
}
