package wire

import (
	"sync"

	"github.com/dchest/siphash"
)

// Fingerprint is a 128-bit digest of a publish payload, computed
// before deserialization so a duplicate can be dropped without paying
// the parse cost.
type Fingerprint [16]byte

// fingerprintKeys are the two independent SipHash key pairs combined
// to widen a single 64-bit SipHash digest into a 128-bit fingerprint.
// They are fixed constants (not secret — this filter defends against
// redundant work, not against an adversary forging collisions).
var fingerprintKeys = [2][2]uint64{
	{0x0123456789abcdef, 0xfedcba9876543210},
	{0x13198a2e03707344, 0xa4093822299f31d0},
}

// ComputeFingerprint hashes payload with two independently-keyed
// SipHash-2-4 passes and concatenates them into a 128-bit fingerprint.
func ComputeFingerprint(payload []byte) Fingerprint {
	var fp Fingerprint
	h0 := siphash.Hash(fingerprintKeys[0][0], fingerprintKeys[0][1], payload)
	h1 := siphash.Hash(fingerprintKeys[1][0], fingerprintKeys[1][1], payload)
	for i := 0; i < 8; i++ {
		fp[i] = byte(h0 >> (8 * i))
		fp[8+i] = byte(h1 >> (8 * i))
	}
	return fp
}

// PublishFilter drops a publish payload seen again within the last Size
// fingerprints, a fixed-size ring buffer trading perfect recall for a
// bounded memory footprint, matching how the reference node's
// duplicate filter is sized rather than grown unbounded.
type PublishFilter struct {
	mu     sync.Mutex
	size   int
	seen   map[Fingerprint]struct{}
	order  []Fingerprint
	cursor int
}

func NewPublishFilter(size int) *PublishFilter {
	if size <= 0 {
		size = 4096
	}
	return &PublishFilter{
		size:  size,
		seen:  make(map[Fingerprint]struct{}, size),
		order: make([]Fingerprint, 0, size),
	}
}

// CheckAndAdd reports whether payload's fingerprint was already present
// in the window (a duplicate, to be dropped pre-parse) and records it
// either way.
func (f *PublishFilter) CheckAndAdd(payload []byte) (duplicate bool) {
	fp := ComputeFingerprint(payload)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[fp]; ok {
		return true
	}

	if len(f.order) < f.size {
		f.order = append(f.order, fp)
	} else {
		evicted := f.order[f.cursor]
		delete(f.seen, evicted)
		f.order[f.cursor] = fp
		f.cursor = (f.cursor + 1) % f.size
	}
	f.seen[fp] = struct{}{}
	return false
}
