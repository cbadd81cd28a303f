package blocks

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func testAccount(seed byte) primitives.Account {
	var priv primitives.PrivateKey
	priv[0] = seed
	return primitives.PublicKeyFromPrivate(priv)
}

func TestStateBlockHashIsCached(t *testing.T) {
	acct := testAccount(1)
	b := NewStateBlock().
		Account(acct).
		Balance(primitives.AmountFromUint64(100)).
		Build()

	h1 := b.Hash()
	h2 := b.Hash()
	if h1 != h2 {
		t.Fatal("expected cached hash to be stable across calls")
	}
}

func TestStateBlockRootFallsBackToAccount(t *testing.T) {
	acct := testAccount(2)
	b := NewStateBlock().Account(acct).Build()
	if b.Root() != primitives.Hash(acct) {
		t.Fatal("expected root to equal account when previous is zero")
	}

	prev := primitives.Blake2b256([]byte("prev"))
	b2 := NewStateBlock().Account(acct).Previous(prev).Build()
	if b2.Root() != prev {
		t.Fatal("expected root to equal previous when set")
	}
}

func TestStateBlockSignVerify(t *testing.T) {
	var priv primitives.PrivateKey
	priv[5] = 42
	acct := primitives.PublicKeyFromPrivate(priv)

	b := NewStateBlock().Account(acct).Balance(primitives.AmountFromUint64(5)).Build()
	b.Sign(priv)
	if !b.VerifySignature() {
		t.Fatal("expected freshly signed block to verify")
	}
}

func TestStateBlockValidPredecessorAlwaysTrue(t *testing.T) {
	b := &StateBlock{}
	for _, pt := range []BlockType{BlockTypeState, BlockTypeLegacyOpen, BlockTypeLegacySend, BlockTypeLegacyReceive, BlockTypeLegacyChange} {
		if !b.ValidPredecessor(pt) {
			t.Fatalf("expected state block to accept %s as predecessor", pt)
		}
	}
}

func TestLegacyOpenHasNoValidPredecessor(t *testing.T) {
	b := &LegacyOpenBlock{}
	if b.ValidPredecessor(BlockTypeState) {
		t.Fatal("open block must not accept any predecessor")
	}
}
