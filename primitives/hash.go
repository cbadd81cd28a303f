// Package primitives implements the wire-level value types shared by every
// other package in this module: block hashes, accounts, amounts, and the
// Ed25519-over-Blake2b signature scheme used to sign blocks and votes.
package primitives

import (
	"encoding/hex"
	"errors"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the size in bytes of a block hash, account public key, or
// secret/work seed.
const HashSize = 32

// Hash is a 256-bit Blake2b digest. It identifies blocks, accounts
// (as public keys), and other content-addressed values.
type Hash [HashSize]byte

// ErrInvalidHashLength is returned when decoding a hex string of the
// wrong length into a Hash.
var ErrInvalidHashLength = errors.New("primitives: invalid hash length")

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// String returns the upper-case hex encoding of the hash, matching the
// canonical text representation used in RPC responses and logs.
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// HashFromBytes copies b into a Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, ErrInvalidHashLength
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a hex-encoded hash string.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	return HashFromBytes(b)
}

// StreamHasher wraps a running Blake2b-256 state so block-field hashing
// reads as a sequence of Write calls, mirroring how the reference node
// folds fields into the block hash one at a time. Blocks are hashed
// with the 256-bit variant; the 512-bit variant is reserved for signing.
type StreamHasher struct {
	state hash.Hash
}

// NewBlockHasher returns a StreamHasher ready to accumulate field bytes.
func NewBlockHasher() *StreamHasher {
	s, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an over-long key, and we pass none.
		panic(err)
	}
	return &StreamHasher{state: s}
}

// Write feeds additional field bytes into the running hash.
func (s *StreamHasher) Write(b []byte) {
	_, _ = s.state.Write(b)
}

// Sum returns the final 32-byte digest without mutating the hasher.
func (s *StreamHasher) Sum() Hash {
	var h Hash
	copy(h[:], s.state.Sum(nil))
	return h
}

// Blake2b256 hashes a single buffer and returns the digest. It is a
// convenience wrapper around StreamHasher for callers hashing one value.
func Blake2b256(data ...[]byte) Hash {
	sh := NewBlockHasher()
	for _, d := range data {
		sh.Write(d)
	}
	return sh.Sum()
}
