package wire

import (
	"errors"

	"github.com/stjet/rsban-node-sub005/voteroute"
)

// hashCountShift/hashCountMask locate the 4-bit hash-count nibble
// within a ConfirmAck header's extensions field: the protocol's top
// nibble, bits 12-15.
const (
	hashCountShift = 12
	hashCountMask  = 0xF000
)

// ErrTooManyHashesForNibble is returned encoding a ConfirmAck whose
// vote carries no hashes or more than the protocol's cap of 12
// (voteroute.MaxHashesPerVote), below the 15 the 4-bit count nibble
// could represent.
var ErrTooManyHashesForNibble = errors.New("wire: vote hash count exceeds nibble width")

// ConfirmAck carries one representative's vote.
type ConfirmAck struct {
	Vote *voteroute.Vote
}

// ExtensionsFor returns the extensions bitfield a ConfirmAck's header
// must carry: the vote's hash count packed into the top nibble.
func (a *ConfirmAck) ExtensionsFor() (uint16, error) {
	n := len(a.Vote.Hashes)
	if n == 0 || n > 15 {
		return 0, ErrTooManyHashesForNibble
	}
	if n > voteroute.MaxHashesPerVote {
		return 0, ErrTooManyHashesForNibble
	}
	return uint16(n) << hashCountShift & hashCountMask, nil
}

// HashCountFromExtensions reads the hash count nibble out of a decoded
// header's extensions field.
func HashCountFromExtensions(extensions uint16) int {
	return int((extensions & hashCountMask) >> hashCountShift)
}
