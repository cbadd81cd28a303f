package voteroute

import (
	"testing"
	"time"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/election"
	"github.com/stjet/rsban-node-sub005/ledger"
	"github.com/stjet/rsban-node-sub005/primitives"
)

func repKey(b byte) (primitives.PrivateKey, primitives.Account) {
	var priv primitives.PrivateKey
	priv[0] = b
	return priv, primitives.PublicKeyFromPrivate(priv)
}

func testBlock(b byte) *blocks.StateBlock {
	var account primitives.Account
	account[0] = b
	return blocks.NewStateBlock().Account(account).Representative(account).
		Balance(primitives.AmountFromUint64(100)).Work(1).Build()
}

func newTestRouter() (*Router, *election.AEC, *ledger.RepWeights, *election.OnlineWeightTracker) {
	aec := election.NewAEC(election.DefaultConfig())
	weights := ledger.NewRepWeights()
	quorum := election.NewOnlineWeightTracker(election.OnlineWeightConfig{
		QuorumPercent:        67,
		OnlineWeightMinimum:  primitives.AmountFromUint64(100),
		TrendSampleInterval:  time.Minute,
		TrendSampleRetention: 10,
	})
	return NewRouter(aec, weights, quorum, DefaultCacheConfig()), aec, weights, quorum
}

func TestProcessRejectsBadSignature(t *testing.T) {
	r, _, _, _ := newTestRouter()
	_, pub := repKey(1)
	hash := primitives.Hash{0x01}
	v := &Vote{Account: pub, Timestamp: election.FinalTimestamp, Hashes: []primitives.Hash{hash}}
	// left unsigned: signature is the zero value and must not validate.
	if _, err := r.Process(v, time.Now()); err != ErrInvalidVote {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}
}

func TestProcessRejectsTooManyHashes(t *testing.T) {
	r, _, _, _ := newTestRouter()
	priv, pub := repKey(1)
	hashes := make([]primitives.Hash, MaxHashesPerVote+1)
	v := &Vote{Account: pub, Timestamp: 1, Hashes: hashes}
	v.Sign(priv)
	if _, err := r.Process(v, time.Now()); err != ErrTooManyHashes {
		t.Fatalf("expected ErrTooManyHashes, got %v", err)
	}
}

func TestProcessFeedsLiveElectionAndConfirms(t *testing.T) {
	r, aec, weights, quorum := newTestRouter()
	quorum.Sample(primitives.AmountFromUint64(100))

	repPriv1, rep1 := repKey(1)
	repPriv2, rep2 := repKey(2)
	weights.Add(rep1, primitives.AmountFromUint64(40))
	weights.Add(rep2, primitives.AmountFromUint64(40))

	block := testBlock(9)
	hash := block.Hash()
	e, err := aec.Insert(hash, election.Priority, primitives.AmountFromUint64(1000), block, time.Now())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	e.Activate()

	v1 := &Vote{Account: rep1, Timestamp: election.FinalTimestamp, Hashes: []primitives.Hash{hash}}
	v1.Sign(repPriv1)
	if confirmed, err := r.Process(v1, time.Now()); err != nil || len(confirmed) != 0 {
		t.Fatalf("unexpected first vote result: confirmed=%v err=%v", confirmed, err)
	}

	v2 := &Vote{Account: rep2, Timestamp: election.FinalTimestamp, Hashes: []primitives.Hash{hash}}
	v2.Sign(repPriv2)
	confirmed, err := r.Process(v2, time.Now())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(confirmed) != 1 || confirmed[0] != hash {
		t.Fatalf("expected confirmation of root %v, got %v", hash, confirmed)
	}
	if e.State() != election.Confirmed {
		t.Fatalf("expected election confirmed, got %s", e.State())
	}
}

func TestProcessCachesVoteForUnknownHash(t *testing.T) {
	r, _, weights, _ := newTestRouter()
	priv, pub := repKey(1)
	weights.Add(pub, primitives.AmountFromUint64(10))

	hash := primitives.Hash{0x05}
	v := &Vote{Account: pub, Timestamp: 1, Hashes: []primitives.Hash{hash}}
	v.Sign(priv)

	if _, err := r.Process(v, time.Now()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := r.CacheLen(); got != 1 {
		t.Fatalf("expected one cached vote, got %d", got)
	}
}

func TestActivateCacheReplaysAndConfirms(t *testing.T) {
	r, aec, weights, quorum := newTestRouter()
	quorum.Sample(primitives.AmountFromUint64(100))

	repPriv1, rep1 := repKey(1)
	repPriv2, rep2 := repKey(2)
	weights.Add(rep1, primitives.AmountFromUint64(40))
	weights.Add(rep2, primitives.AmountFromUint64(40))

	block := testBlock(9)
	hash := block.Hash()

	v1 := &Vote{Account: rep1, Timestamp: election.FinalTimestamp, Hashes: []primitives.Hash{hash}}
	v1.Sign(repPriv1)
	v2 := &Vote{Account: rep2, Timestamp: election.FinalTimestamp, Hashes: []primitives.Hash{hash}}
	v2.Sign(repPriv2)

	now := time.Now()
	if _, err := r.Process(v1, now); err != nil {
		t.Fatalf("process v1: %v", err)
	}
	if _, err := r.Process(v2, now); err != nil {
		t.Fatalf("process v2: %v", err)
	}
	if got := r.CacheLen(); got != 2 {
		t.Fatalf("expected two cached votes before election exists, got %d", got)
	}

	e, err := aec.Insert(hash, election.Priority, primitives.AmountFromUint64(1000), block, now)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	e.Activate()

	r.ActivateCache(hash, hash, e, now)

	if e.State() != election.Confirmed {
		t.Fatalf("expected election confirmed after cache replay, got %s", e.State())
	}
	if got := r.CacheLen(); got != 0 {
		t.Fatalf("expected cache drained, got %d entries remaining", got)
	}
}
