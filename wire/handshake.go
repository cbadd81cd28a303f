package wire

import (
	"errors"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// Extension bit positions for a NodeIdHandshake header. The protocol
// names these three flags without pinning bit positions, so this
// module fixes them the way the reference node's header bitfield
// packs adjacent boolean flags: lowest bits first.
const (
	HandshakeQueryFlag    uint16 = 1 << 0
	HandshakeResponseFlag uint16 = 1 << 1
	HandshakeV2Flag       uint16 = 1 << 2
)

// Cookie is the random challenge an initiator issues and records
// against the peer address it sent it to.
type Cookie [32]byte

// HandshakeQuery is sent by the connection initiator.
type HandshakeQuery struct {
	Cookie Cookie
}

// HandshakeResponse is the responder's reply. Salt and GenesisHash are
// populated only when the query's V2 flag was set; signingMessage
// omits them when V2 is false.
type HandshakeResponse struct {
	NodeID      primitives.Account
	V2          bool
	Salt        [32]byte
	GenesisHash primitives.Hash
	Signature   primitives.Signature
}

// ErrSelfConnection is returned when a handshake response's node id
// matches our own: the peer is us, reached through a loop in routing.
var ErrSelfConnection = errors.New("wire: handshake resolves to self")

// ErrUnsolicitedResponse is returned when a response arrives on a
// channel that never sent a query.
var ErrUnsolicitedResponse = errors.New("wire: unsolicited handshake response")

// ErrDuplicateQuery is returned when a second query arrives on a
// channel that already has one outstanding.
var ErrDuplicateQuery = errors.New("wire: duplicate handshake query on channel")

// ErrCookieMismatch is returned when a response's signature validates
// against a cookie other than the one this channel issued.
var ErrCookieMismatch = errors.New("wire: handshake cookie mismatch")

// signingMessage builds cookie || [salt || genesis], the message a
// responder signs and an initiator re-derives to validate it.
func signingMessage(cookie Cookie, v2 bool, salt [32]byte, genesis primitives.Hash) []byte {
	msg := make([]byte, 0, 32+32+32)
	msg = append(msg, cookie[:]...)
	if v2 {
		msg = append(msg, salt[:]...)
		msg = append(msg, genesis[:]...)
	}
	return msg
}

// Sign populates r.Signature over cookie (and, if r.V2, salt||genesis)
// under priv, whose public half must equal r.NodeID.
func (r *HandshakeResponse) Sign(priv primitives.PrivateKey, cookie Cookie) {
	msg := signingMessage(cookie, r.V2, r.Salt, r.GenesisHash)
	r.Signature = primitives.Sign(priv, msg)
}

// Validate checks r's signature against cookie, rejects a response
// naming our own node id (a self-connection), and if r.V2 requires the
// claimed genesis hash to match ours.
func (r *HandshakeResponse) Validate(cookie Cookie, ourNodeID primitives.Account, ourGenesis primitives.Hash) error {
	if r.NodeID == ourNodeID {
		return ErrSelfConnection
	}
	msg := signingMessage(cookie, r.V2, r.Salt, r.GenesisHash)
	if !primitives.Verify(r.NodeID, msg, r.Signature) {
		return ErrCookieMismatch
	}
	if r.V2 && r.GenesisHash != ourGenesis {
		return errors.New("wire: handshake genesis mismatch")
	}
	return nil
}

// CookieTable tracks outstanding handshake cookies per remote channel
// key, purging entries older than a configured cutoff (sync_cookie_cutoff,
// 5s on the live network) so a slow or dead peer can't hold a cookie
// slot open indefinitely.
type CookieTable struct {
	entries map[string]cookieEntry
}

type cookieEntry struct {
	cookie Cookie
	issued int64 // unix nanos, supplied by the caller so this stays deterministic/testable
}

func NewCookieTable() *CookieTable {
	return &CookieTable{entries: make(map[string]cookieEntry)}
}

// Issue records a freshly-generated cookie for channelKey, overwriting
// any previous entry (a fresh query supersedes whatever cookie was
// outstanding before).
func (t *CookieTable) Issue(channelKey string, cookie Cookie, nowUnixNano int64) {
	t.entries[channelKey] = cookieEntry{cookie: cookie, issued: nowUnixNano}
}

// Lookup returns the cookie issued for channelKey, if any.
func (t *CookieTable) Lookup(channelKey string) (Cookie, bool) {
	e, ok := t.entries[channelKey]
	if !ok {
		return Cookie{}, false
	}
	return e.cookie, true
}

// Purge drops every entry issued more than cutoffNanos before now.
func (t *CookieTable) Purge(nowUnixNano, cutoffNanos int64) {
	for key, e := range t.entries {
		if nowUnixNano-e.issued > cutoffNanos {
			delete(t.entries, key)
		}
	}
}

// Remove drops channelKey's entry once its handshake has completed
// (successfully or not).
func (t *CookieTable) Remove(channelKey string) {
	delete(t.entries, channelKey)
}
