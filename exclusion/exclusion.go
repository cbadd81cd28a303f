// Package exclusion tracks peers excluded for misbehavior: a score per
// IPv6 address (IPv4 addresses normalized into their mapped form) that
// grows with each offense and gates an escalating exclusion window.
package exclusion

import (
	"net/netip"
	"sync"
	"time"
)

// scoreLimit is the score at which a peer starts being excluded.
const scoreLimit = 2

// excludeTime and excludeRemove are the base exclusion window and the
// grace period added, scaled by score, before an excluded entry is
// forgotten entirely.
const (
	excludeTime   = time.Hour
	excludeRemove = 24 * time.Hour
)

// DefaultMaxSize bounds how many misbehaving-peer entries are tracked
// at once (perma-bans are not counted against this cap).
const DefaultMaxSize = 5000

// Endpoint is a peer address. Exclusion keys only on the IP: two
// connections from the same address on different ports are the same
// peer for exclusion purposes.
type Endpoint struct {
	IP   netip.Addr
	Port uint16
}

// NormalizeIP maps an IPv4 address into its IPv6-mapped form so every
// stored key is an IPv6 address, matching the reference node's
// per-IPv6-address scoring.
func NormalizeIP(addr netip.Addr) netip.Addr {
	if addr.Is4() {
		return netip.AddrFrom16(addr.As16())
	}
	return addr
}

type peerRecord struct {
	address      Endpoint
	excludeUntil time.Time
	score        uint64
}

func newPeerRecord(ep Endpoint, now time.Time) *peerRecord {
	return &peerRecord{address: ep, score: 1, excludeUntil: now.Add(excludeTime)}
}

func (p *peerRecord) misbehaved(now time.Time) {
	p.score++
	p.excludeUntil = exclusionEnd(p.score, now)
}

func exclusionEnd(score uint64, now time.Time) time.Time {
	return now.Add(excludeTime * time.Duration(exclusionDurationFactor(score)))
}

func exclusionDurationFactor(score uint64) uint64 {
	if score <= scoreLimit {
		return 1
	}
	return score * 2
}

func (p *peerRecord) isExcluded(now time.Time) bool {
	return p.score >= scoreLimit && p.excludeUntil.After(now)
}

func (p *peerRecord) hasExpired(now time.Time) bool {
	return p.excludeUntil.Add(excludeRemove * time.Duration(p.score)).Before(now)
}

// Set manages every currently-tracked excluded or misbehaving peer.
type Set struct {
	mu        sync.Mutex
	byIP      map[netip.Addr]*peerRecord
	permaBans map[netip.Addr]struct{}
	maxSize   int
}

func New() *Set {
	return WithMaxSize(DefaultMaxSize)
}

// WithMaxSize caps the number of misbehaving-peer entries tracked at
// once; perma-bans do not count against this.
func WithMaxSize(maxSize int) *Set {
	return &Set{
		byIP:      make(map[netip.Addr]*peerRecord),
		permaBans: make(map[netip.Addr]struct{}),
		maxSize:   maxSize,
	}
}

// PeerMisbehaved records one offense from ep's address, creating a new
// entry (score 1, excluded for the base window only once score
// reaches scoreLimit) or escalating an existing one, and returns the
// address's new score.
func (s *Set) PeerMisbehaved(ep Endpoint, now time.Time) uint64 {
	ip := NormalizeIP(ep.IP)

	s.mu.Lock()
	defer s.mu.Unlock()

	if peer, ok := s.byIP[ip]; ok {
		peer.misbehaved(now)
		return peer.score
	}

	s.cleanOldPeersLocked()
	peer := newPeerRecord(ep, now)
	s.byIP[ip] = peer
	return peer.score
}

// PermaBan excludes ep's address forever, e.g. to prevent a node from
// connecting to itself. Perma-bans never expire and are not subject to
// the capacity cap.
func (s *Set) PermaBan(ep Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permaBans[NormalizeIP(ep.IP)] = struct{}{}
}

// Contains reports whether ep's address has any tracked entry,
// perma-banned or not, regardless of whether its exclusion window has
// elapsed.
func (s *Set) Contains(ep Endpoint) bool {
	ip := NormalizeIP(ep.IP)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permaBans[ip]; ok {
		return true
	}
	_, ok := s.byIP[ip]
	return ok
}

// ExcludedUntil reports the time an address's exclusion lifts, or
// false if it has no entry. A perma-banned address reports the
// zero-value time.Time's maximum representable instant.
func (s *Set) ExcludedUntil(ep Endpoint) (time.Time, bool) {
	ip := NormalizeIP(ep.IP)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permaBans[ip]; ok {
		return maxTime, true
	}
	if peer, ok := s.byIP[ip]; ok {
		return peer.excludeUntil, true
	}
	return time.Time{}, false
}

var maxTime = time.Unix(1<<62, 0)

// IsExcluded reports whether ep's address is currently excluded,
// pruning its entry first if it has aged past EXCLUDE_REMOVE.
func (s *Set) IsExcluded(ep Endpoint, now time.Time) bool {
	ip := NormalizeIP(ep.IP)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.permaBans[ip]; ok {
		return true
	}

	peer, ok := s.byIP[ip]
	if !ok {
		return false
	}
	if peer.hasExpired(now) {
		delete(s.byIP, ip)
		return false
	}
	return peer.isExcluded(now)
}

// Len returns the total number of tracked entries, including perma-bans.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byIP) + len(s.permaBans)
}

// cleanOldPeersLocked evicts the entry with the soonest exclude-until
// time until the set is back under capacity, leaving at least one
// entry in place.
func (s *Set) cleanOldPeersLocked() {
	for len(s.byIP) > 1 && len(s.byIP) >= s.maxSize {
		var oldestIP netip.Addr
		var oldestTime time.Time
		found := false
		for ip, peer := range s.byIP {
			if !found || peer.excludeUntil.Before(oldestTime) {
				oldestIP, oldestTime, found = ip, peer.excludeUntil, true
			}
		}
		if !found {
			return
		}
		delete(s.byIP, oldestIP)
	}
}
