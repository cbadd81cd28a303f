// Package voteroute dispatches incoming votes to the elections they
// name, caching votes that arrive before their election exists.
package voteroute

import (
	"github.com/stjet/rsban-node-sub005/primitives"
)

// MaxHashesPerVote is the protocol cap on how many block hashes a
// single vote message may carry.
const MaxHashesPerVote = 12

// voteHashPrefix domain-separates a vote's signing hash from a block's,
// the same way the state block preamble reserves its 32nd byte as a
// subtype discriminator.
var voteHashPrefix = primitives.Hash{31: 0x07}

// Vote is a representative's signed endorsement of one or more
// candidate blocks, identified by hash, at a given timestamp.
// FinalTimestamp marks it as a final vote.
type Vote struct {
	Account   primitives.Account
	Signature primitives.Signature
	Timestamp uint64
	Hashes    []primitives.Hash
}

// SigningHash computes Blake2b(vote_hash_prefix || timestamp_le ||
// hash_1 || ... || hash_n), the message actually signed.
func (v *Vote) SigningHash() primitives.Hash {
	h := primitives.NewBlockHasher()
	h.Write(voteHashPrefix[:])
	var ts [8]byte
	for i := 0; i < 8; i++ {
		ts[i] = byte(v.Timestamp >> (8 * i))
	}
	h.Write(ts[:])
	for _, hash := range v.Hashes {
		h.Write(hash[:])
	}
	return h.Sum()
}

// Verify checks the vote's signature against its account and content.
func (v *Vote) Verify() bool {
	msg := v.SigningHash()
	return primitives.Verify(v.Account, msg[:], v.Signature)
}

// Sign computes and stores the vote's signature under priv, whose
// public half must equal v.Account.
func (v *Vote) Sign(priv primitives.PrivateKey) {
	msg := v.SigningHash()
	v.Signature = primitives.Sign(priv, msg[:])
}
