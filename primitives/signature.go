package primitives

import (
	"errors"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// SignatureSize is the size in bytes of a detached Ed25519-Blake2b
// signature (R || S).
const SignatureSize = 64

// Signature is a detached Ed25519-over-Blake2b-512 signature.
type Signature [SignatureSize]byte

// PrivateKey is a 32-byte Ed25519 seed. Unlike crypto/ed25519's
// PrivateKey, this is the raw seed, not seed+public key concatenated;
// PublicKeyFromPrivate derives the public half on demand.
type PrivateKey [32]byte

// ErrInvalidSignature is returned by Verify when a signature fails to
// validate against the given public key and message.
var ErrInvalidSignature = errors.New("primitives: invalid signature")

// expandPrivate hashes the seed with Blake2b-512 and clamps the first
// half into an Ed25519 scalar, returning (scalar, prefix).
func expandPrivate(priv PrivateKey) (*big.Int, []byte) {
	h := blake2bSum512(priv[:])
	var a [32]byte
	copy(a[:], h[:32])
	a[0] &= 0xf8
	a[31] &= 0x7f
	a[31] |= 0x40

	// a is little-endian per RFC 8032; reverse for big.Int.
	be := make([]byte, 32)
	for i, b := range a {
		be[31-i] = b
	}
	scalar := new(big.Int).SetBytes(be)
	prefix := append([]byte(nil), h[32:]...)
	return scalar, prefix
}

// blake2bSum512 hashes data with Blake2b-512, the hash the reference
// node substitutes for SHA-512 throughout its Ed25519 scheme.
func blake2bSum512(data ...[]byte) [64]byte {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	for _, d := range data {
		h.Write(d)
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PublicKeyFromPrivate derives the public key (account) for a private
// key seed.
func PublicKeyFromPrivate(priv PrivateKey) Account {
	scalar, _ := expandPrivate(priv)
	A := edScalarMult(scalar, edBasePoint())
	enc := edEncode(A)
	return Account(enc)
}

// scalarToLE encodes a big.Int as a fixed-width little-endian byte
// slice, matching the wire/scalar encoding EdDSA uses.
func scalarToLE(b *big.Int, width int) []byte {
	be := b.Bytes()
	out := make([]byte, width)
	for i, v := range be {
		out[len(be)-1-i] = v
	}
	return out
}

// leToScalar interprets a little-endian byte slice as a big.Int.
func leToScalar(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// Sign produces a detached signature over message using priv.
func Sign(priv PrivateKey, message []byte) Signature {
	scalar, prefix := expandPrivate(priv)
	pub := PublicKeyFromPrivate(priv)

	rHash := blake2bSum512(prefix, message)
	r := leToScalar(rHash[:])
	r.Mod(r, edOrder)

	R := edScalarMult(r, edBasePoint())
	Renc := edEncode(R)

	kHash := blake2bSum512(Renc[:], pub[:], message)
	k := leToScalar(kHash[:])
	k.Mod(k, edOrder)

	s := new(big.Int).Mul(k, scalar)
	s.Add(s, r)
	s.Mod(s, edOrder)

	var sig Signature
	copy(sig[:32], Renc[:])
	copy(sig[32:], scalarToLE(s, 32))
	return sig
}

// Verify reports whether sig is a valid signature over message by the
// account's public key.
func Verify(pub Account, message []byte, sig Signature) bool {
	var Renc [32]byte
	copy(Renc[:], sig[:32])
	s := leToScalar(sig[32:])
	if s.Cmp(edOrder) >= 0 {
		return false
	}

	R, ok := edDecode(Renc)
	if !ok {
		return false
	}
	A, ok := edDecode([32]byte(pub))
	if !ok {
		return false
	}

	kHash := blake2bSum512(Renc[:], pub[:], message)
	k := leToScalar(kHash[:])
	k.Mod(k, edOrder)

	// Check S*B == R + k*A
	lhs := edScalarMult(s, edBasePoint())
	rhs := edAdd(R, edScalarMult(k, A))

	return lhs.x.Cmp(rhs.x) == 0 && lhs.y.Cmp(rhs.y) == 0
}
