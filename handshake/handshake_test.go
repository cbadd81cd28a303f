package handshake

import (
	"testing"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/wire"
)

func testKeys() (primitives.PrivateKey, primitives.Account) {
	var priv primitives.PrivateKey
	priv[0] = 0x7a
	return priv, primitives.PublicKeyFromPrivate(priv)
}

func TestIssueQueryThenValidResponseSucceeds(t *testing.T) {
	ourPriv, ourID := testKeys()
	_ = ourPriv
	peerPriv, peerID := func() (primitives.PrivateKey, primitives.Account) {
		var p primitives.PrivateKey
		p[0] = 0x11
		return p, primitives.PublicKeyFromPrivate(p)
	}()

	var genesis primitives.Hash
	genesis[0] = 0x42

	m := New(ourID, genesis)
	query, err := m.IssueQuery("chan-1", time.Now())
	if err != nil {
		t.Fatalf("IssueQuery: %v", err)
	}

	peerMachine := New(peerID, genesis)
	resp := peerMachine.BuildResponse(peerPriv, query.Cookie, true, [32]byte{0x01})

	if err := m.OnReceiveResponse("chan-1", resp); err != nil {
		t.Fatalf("expected response to validate, got %v", err)
	}
}

func TestUnsolicitedResponseRejected(t *testing.T) {
	_, ourID := testKeys()
	var genesis primitives.Hash
	m := New(ourID, genesis)

	var resp wire.HandshakeResponse
	if err := m.OnReceiveResponse("chan-never-queried", resp); err != wire.ErrUnsolicitedResponse {
		t.Fatalf("expected ErrUnsolicitedResponse, got %v", err)
	}
}

func TestDuplicateQueryOnSameChannelRejected(t *testing.T) {
	_, ourID := testKeys()
	var genesis primitives.Hash
	m := New(ourID, genesis)

	if err := m.OnReceiveQuery("chan-1"); err != nil {
		t.Fatalf("first query should be accepted: %v", err)
	}
	if err := m.OnReceiveQuery("chan-1"); err != wire.ErrDuplicateQuery {
		t.Fatalf("expected ErrDuplicateQuery on second query, got %v", err)
	}
}

func TestSecondResponseAfterConsumedIsUnsolicited(t *testing.T) {
	_, ourID := testKeys()
	peerPriv, peerID := func() (primitives.PrivateKey, primitives.Account) {
		var p primitives.PrivateKey
		p[0] = 0x22
		return p, primitives.PublicKeyFromPrivate(p)
	}()
	var genesis primitives.Hash

	m := New(ourID, genesis)
	query, _ := m.IssueQuery("chan-1", time.Now())

	peerMachine := New(peerID, genesis)
	resp := peerMachine.BuildResponse(peerPriv, query.Cookie, false, [32]byte{})

	if err := m.OnReceiveResponse("chan-1", resp); err != nil {
		t.Fatalf("first response should validate: %v", err)
	}
	if err := m.OnReceiveResponse("chan-1", resp); err != wire.ErrUnsolicitedResponse {
		t.Fatalf("expected replayed response to be unsolicited, got %v", err)
	}
}

func TestSelfConnectionRejected(t *testing.T) {
	priv, ourID := testKeys()
	var genesis primitives.Hash

	m := New(ourID, genesis)
	query, _ := m.IssueQuery("chan-1", time.Now())

	resp := m.BuildResponse(priv, query.Cookie, false, [32]byte{})
	if err := m.OnReceiveResponse("chan-1", resp); err != wire.ErrSelfConnection {
		t.Fatalf("expected ErrSelfConnection, got %v", err)
	}
}

func TestMismatchedGenesisRejected(t *testing.T) {
	_, ourID := testKeys()
	peerPriv, peerID := func() (primitives.PrivateKey, primitives.Account) {
		var p primitives.PrivateKey
		p[0] = 0x33
		return p, primitives.PublicKeyFromPrivate(p)
	}()

	var ourGenesis, theirGenesis primitives.Hash
	ourGenesis[0] = 0x42
	theirGenesis[0] = 0x43

	m := New(ourID, ourGenesis)
	query, _ := m.IssueQuery("chan-1", time.Now())

	peerMachine := New(peerID, theirGenesis)
	resp := peerMachine.BuildResponse(peerPriv, query.Cookie, true, [32]byte{0x01})

	if err := m.OnReceiveResponse("chan-1", resp); err != ErrGenesisMismatch {
		t.Fatalf("expected ErrGenesisMismatch, got %v", err)
	}
}

func TestPurgeDropsOldCookies(t *testing.T) {
	_, ourID := testKeys()
	var genesis primitives.Hash
	m := New(ourID, genesis)

	old := time.Now().Add(-time.Hour)
	m.cookies.Issue("chan-old", wire.Cookie{0x1}, old.UnixNano())

	m.Purge(time.Now())

	if _, ok := m.cookies.Lookup("chan-old"); ok {
		t.Fatalf("expected stale cookie to be purged")
	}
}
