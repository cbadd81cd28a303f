package primitives

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Work generation itself (the PoW search loop) is treated as an
// external collaborator; this package only validates a claimed work
// value against a difficulty threshold, which the block processor
// needs on every incoming block.

// WorkThresholdSend is the minimum work difficulty for send/change/
// legacy blocks.
const WorkThresholdSend uint64 = 0xfffffff800000000

// WorkThresholdReceive is the minimum work difficulty for receive and
// epoch blocks, lower than the send threshold so that accounts under
// load can still process incoming funds.
const WorkThresholdReceive uint64 = 0xfffffe0000000000

// ValidateWork reports whether work is a valid proof-of-work solution
// for root at or above threshold. The hash function is an 8-byte
// Blake2b digest of the work nonce (little-endian) followed by the
// root; the digest is then read back as a little-endian uint64 and
// compared against the threshold.
func ValidateWork(root Hash, work uint64, threshold uint64) bool {
	return WorkValue(root, work) >= threshold
}

// WorkValue computes the raw difficulty value of a work nonce against
// a root, for callers that want to compare against a threshold
// themselves (e.g. logging the margin above minimum).
func WorkValue(root Hash, work uint64) uint64 {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic(err)
	}
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], work)
	h.Write(nonce[:])
	h.Write(root[:])
	digest := h.Sum(nil)
	return binary.LittleEndian.Uint64(digest)
}
