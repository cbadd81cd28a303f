// Package election implements the Active Elections Container (AEC): the
// per-fork voting state machine, its tally and tie-break rules, the
// priority-bucketed container that bounds how many elections run at
// once, and the four-class scheduler that feeds it.
package election

import (
	"bytes"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// State is a position in the election state machine.
type State int

const (
	Passive State = iota
	Active
	Confirmed
	ExpiredConfirmed
	Cancelled
	ExpiredUnconfirmed
)

func (s State) String() string {
	switch s {
	case Passive:
		return "passive"
	case Active:
		return "active"
	case Confirmed:
		return "confirmed"
	case ExpiredConfirmed:
		return "expired_confirmed"
	case Cancelled:
		return "cancelled"
	case ExpiredUnconfirmed:
		return "expired_unconfirmed"
	default:
		return "unknown"
	}
}

// Class identifies which scheduler started an election, which in turn
// determines its time-to-live.
type Class int

const (
	Manual Class = iota
	Priority
	Hinted
	Optimistic
)

func (c Class) String() string {
	switch c {
	case Manual:
		return "manual"
	case Priority:
		return "priority"
	case Hinted:
		return "hinted"
	case Optimistic:
		return "optimistic"
	default:
		return "unknown"
	}
}

// FinalTimestamp is the reserved vote timestamp that marks a vote as a
// "final" vote: it counts toward ordinary tally the same as any other
// vote, but also accumulates into the final tally that gates
// confirmation.
const FinalTimestamp uint64 = 0xFFFFFFFFFFFFFFFF

// TimeToLive returns how long an election of this class may run
// without reaching quorum before it expires unconfirmed.
func (c Class) TimeToLive() time.Duration {
	switch c {
	case Hinted, Optimistic:
		return 30 * time.Second
	default:
		return 5 * time.Minute
	}
}

type voteRecord struct {
	timestamp uint64
	hash      primitives.Hash
	weight    primitives.Amount
	final     bool
}

// Election tracks every competing block for one account chain root,
// the votes cast on them, and the tally used to decide a winner.
type Election struct {
	mu sync.Mutex

	Root  primitives.Hash
	Class Class

	state    State
	deadline time.Time

	candidates map[primitives.Hash]*blocks.StateBlock
	firstSeen  map[primitives.Hash]uint64
	seq        uint64

	tally      map[primitives.Hash]primitives.Amount
	finalTally map[primitives.Hash]primitives.Amount
	lastVotes  map[primitives.Account]voteRecord

	winner primitives.Hash
}

// New starts a Passive election rooted at root for the given class,
// with an initial candidate block.
func New(root primitives.Hash, class Class, initial *blocks.StateBlock, now time.Time) *Election {
	e := &Election{
		Root:       root,
		Class:      class,
		state:      Passive,
		deadline:   now.Add(class.TimeToLive()),
		candidates: make(map[primitives.Hash]*blocks.StateBlock),
		firstSeen:  make(map[primitives.Hash]uint64),
		tally:      make(map[primitives.Hash]primitives.Amount),
		finalTally: make(map[primitives.Hash]primitives.Amount),
		lastVotes:  make(map[primitives.Account]voteRecord),
	}
	if initial != nil {
		e.addCandidateLocked(initial.Hash(), initial)
		e.winner = initial.Hash()
	}
	return e
}

func (e *Election) addCandidateLocked(hash primitives.Hash, block *blocks.StateBlock) {
	if _, ok := e.firstSeen[hash]; ok {
		return
	}
	e.seq++
	e.firstSeen[hash] = e.seq
	if block != nil {
		e.candidates[hash] = block
	}
}

// AddCandidate registers another fork competing at the same root (e.g.
// an equivocating send discovered after the election started).
func (e *Election) AddCandidate(block *blocks.StateBlock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addCandidateLocked(block.Hash(), block)
}

// Activate transitions a Passive election to Active, meaning the
// engine should now solicit confirm_req broadcasts for it.
func (e *Election) Activate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Passive {
		e.state = Active
	}
}

// State returns the election's current state.
func (e *Election) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Winner returns the block hash currently leading the tally, and
// whether any candidate is known yet (the initial block counts as one,
// even before any vote has been cast).
func (e *Election) Winner() (primitives.Hash, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.firstSeen) == 0 {
		return primitives.Hash{}, false
	}
	return e.winner, true
}

// WinningBlock returns the candidate block object for the current
// winner, if it has been seen (votes may reference hashes for which no
// block has arrived yet).
func (e *Election) WinningBlock() (*blocks.StateBlock, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.candidates[e.winner]
	return b, ok
}

// Cancel forcibly terminates the election, e.g. because an ancestor
// block was rolled back.
func (e *Election) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Confirmed && e.state != ExpiredConfirmed {
		e.state = Cancelled
	}
}

// CheckExpired transitions an Active/Passive election past its
// deadline to ExpiredUnconfirmed. Returns true if it did.
func (e *Election) CheckExpired(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Passive && e.state != Active {
		return false
	}
	if now.Before(e.deadline) {
		return false
	}
	e.state = ExpiredUnconfirmed
	return true
}

// MarkCemented transitions a Confirmed election to ExpiredConfirmed
// once the confirming set has caught up to its winner.
func (e *Election) MarkCemented() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Confirmed {
		e.state = ExpiredConfirmed
	}
}

// ProcessVote applies one representative's vote and reports whether
// this call caused the election to reach Confirmed. quorumDelta is the
// online-weight-derived threshold the caller computed for this tally.
func (e *Election) ProcessVote(rep primitives.Account, timestamp uint64, hash primitives.Hash, weight primitives.Amount, quorumDelta primitives.Amount) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Cancelled || e.state == ExpiredUnconfirmed || e.state == ExpiredConfirmed {
		return false
	}

	if prev, existed := e.lastVotes[rep]; existed {
		if prev.timestamp >= timestamp {
			return false // replay: no newer information
		}
		e.tally[prev.hash] = e.tally[prev.hash].Sub(prev.weight)
		if prev.final {
			e.finalTally[prev.hash] = e.finalTally[prev.hash].Sub(prev.weight)
		}
	}

	e.addCandidateLocked(hash, nil)
	e.tally[hash] = e.tally[hash].Add(weight)
	isFinal := timestamp == FinalTimestamp
	if isFinal {
		e.finalTally[hash] = e.finalTally[hash].Add(weight)
	}
	e.lastVotes[rep] = voteRecord{timestamp: timestamp, hash: hash, weight: weight, final: isFinal}

	e.winner = e.computeWinnerLocked()

	if e.state == Active || e.state == Passive {
		final := e.finalTally[e.winner]
		if final.Cmp(quorumDelta) >= 0 {
			e.state = Confirmed
			return true
		}
	}
	return false
}

// computeWinnerLocked picks the highest-tally candidate, preferring
// the current winner on ties, then the smallest hash, then the
// earliest-seen candidate.
func (e *Election) computeWinnerLocked() primitives.Hash {
	var best primitives.Hash
	haveBest := false
	for hash, weight := range e.tally {
		if !haveBest {
			best, haveBest = hash, true
			continue
		}
		if e.betterLocked(hash, weight, best, e.tally[best]) {
			best = hash
		}
	}
	if !haveBest {
		return e.winner
	}
	return best
}

func (e *Election) betterLocked(hash primitives.Hash, weight primitives.Amount, against primitives.Hash, againstWeight primitives.Amount) bool {
	cmp := weight.Cmp(againstWeight)
	if cmp > 0 {
		return true
	}
	if cmp < 0 {
		return false
	}
	if hash == e.winner {
		return true
	}
	if against == e.winner {
		return false
	}
	if c := bytes.Compare(hash[:], against[:]); c != 0 {
		return c < 0
	}
	return e.firstSeen[hash] < e.firstSeen[against]
}

// Tally returns a snapshot of the current per-candidate vote weight,
// for diagnostics and tests.
func (e *Election) Tally() map[primitives.Hash]primitives.Amount {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[primitives.Hash]primitives.Amount, len(e.tally))
	for h, w := range e.tally {
		out[h] = w
	}
	return out
}
