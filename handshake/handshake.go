// Package handshake drives the per-channel NodeIdHandshake state
// machine on top of wire's cookie/response primitives: issuing a query
// and recording its cookie, accepting at most one incoming query per
// channel, and validating a response against the cookie the channel
// itself issued.
package handshake

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/wire"
)

// SyncCookieCutoff is how long an outstanding cookie may live before
// Machine.Purge drops it (5s on the live network).
const SyncCookieCutoff = 5 * time.Second

// ErrGenesisMismatch is returned validating a v2 response whose
// claimed genesis hash does not match ours.
var ErrGenesisMismatch = errors.New("handshake: genesis mismatch")

// Machine tracks handshake state for every channel: whether a query
// has been issued and is awaiting a response, and whether the peer has
// already sent its one permitted query.
type Machine struct {
	ourNodeID primitives.Account
	ourGenesis primitives.Hash

	mu            sync.Mutex
	cookies       *wire.CookieTable
	receivedQuery map[string]bool
}

// New builds a Machine for a node identified by ourNodeID, validating
// v2 responses against ourGenesis.
func New(ourNodeID primitives.Account, ourGenesis primitives.Hash) *Machine {
	return &Machine{
		ourNodeID:     ourNodeID,
		ourGenesis:    ourGenesis,
		cookies:       wire.NewCookieTable(),
		receivedQuery: make(map[string]bool),
	}
}

// IssueQuery generates a fresh cookie for channelKey, records it, and
// returns the query to send. A fresh query always supersedes whatever
// cookie was outstanding for the channel before — initiating a new
// handshake attempt is not itself a protocol violation, only receiving
// a second incoming query is (see OnReceiveQuery).
func (m *Machine) IssueQuery(channelKey string, now time.Time) (wire.HandshakeQuery, error) {
	var cookie wire.Cookie
	if _, err := rand.Read(cookie[:]); err != nil {
		return wire.HandshakeQuery{}, err
	}

	m.mu.Lock()
	m.cookies.Issue(channelKey, cookie, now.UnixNano())
	m.mu.Unlock()

	return wire.HandshakeQuery{Cookie: cookie}, nil
}

// OnReceiveQuery records that channelKey's peer has sent its query.
// Returns wire.ErrDuplicateQuery if this channel already has an
// outstanding received query, per spec.md §4.K point 4.
func (m *Machine) OnReceiveQuery(channelKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.receivedQuery[channelKey] {
		return wire.ErrDuplicateQuery
	}
	m.receivedQuery[channelKey] = true
	return nil
}

// OnReceiveResponse validates resp against the cookie this Machine
// issued for channelKey. Returns wire.ErrUnsolicitedResponse if no
// query was ever issued on this channel (or it has already been
// consumed by a prior response). The channel's cookie entry is removed
// as soon as it is found, before validation: the handshake is complete
// either way.
func (m *Machine) OnReceiveResponse(channelKey string, resp wire.HandshakeResponse) error {
	m.mu.Lock()
	cookie, ok := m.cookies.Lookup(channelKey)
	if ok {
		m.cookies.Remove(channelKey)
	}
	m.mu.Unlock()

	if !ok {
		return wire.ErrUnsolicitedResponse
	}
	if resp.V2 && resp.GenesisHash != m.ourGenesis {
		return ErrGenesisMismatch
	}
	return resp.Validate(cookie, m.ourNodeID, m.ourGenesis)
}

// BuildResponse signs a response to cookie under priv, whose public
// half must equal our node id. v2 additionally commits to salt and our
// genesis hash, per spec.md §4.K's v2 response shape.
func (m *Machine) BuildResponse(priv primitives.PrivateKey, cookie wire.Cookie, v2 bool, salt [32]byte) wire.HandshakeResponse {
	resp := wire.HandshakeResponse{
		NodeID: m.ourNodeID,
		V2:     v2,
	}
	if v2 {
		resp.Salt = salt
		resp.GenesisHash = m.ourGenesis
	}
	resp.Sign(priv, cookie)
	return resp
}

// Purge drops every outstanding cookie issued more than
// SyncCookieCutoff before the current time — called from the
// network-level cleanup loop (netio.CookiePurger). The cutoff argument
// is ignored, and received-query markers are left in place (Forget
// drops those).
func (m *Machine) Purge(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies.Purge(time.Now().UnixNano(), int64(SyncCookieCutoff))
	_ = cutoff
}

// Forget drops all handshake state for channelKey, e.g. once the
// channel itself is closed.
func (m *Machine) Forget(channelKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies.Remove(channelKey)
	delete(m.receivedQuery, channelKey)
}
