package primitives

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Amount is a balance or send/receive delta. Accounts transact in raw
// units, the smallest indivisible denomination, which requires the
// full 128-bit unsigned range uint64 cannot provide; uint256.Int gives
// us a real fixed-width integer to back it instead of math/big.
type Amount struct {
	v uint256.Int
}

// ErrAmountOverflow is returned by CheckedAdd and CheckedSub when an
// operation would wrap past the 128-bit representable range used for
// raw balances. Add and Sub never return it and never panic: they wrap.
var ErrAmountOverflow = errors.New("primitives: amount overflow")

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{}

// AmountFromUint64 constructs an Amount from a uint64 raw value.
func AmountFromUint64(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// AmountFromBytes decodes a big-endian 16-byte amount, the wire and
// storage representation of a balance.
func AmountFromBytes(b []byte) (Amount, error) {
	var a Amount
	if len(b) != 16 {
		return a, fmt.Errorf("primitives: amount must be 16 bytes, got %d", len(b))
	}
	// uint256.Int is 4 uint64 limbs but a balance only ever occupies the
	// low 128 bits; pad to 32 bytes for SetBytes.
	var full [32]byte
	copy(full[16:], b)
	a.v.SetBytes(full[:])
	return a, nil
}

// AmountFromDecimal parses a base-10 string into an Amount.
func AmountFromDecimal(s string) (Amount, error) {
	var a Amount
	if _, err := a.v.SetFromDecimal(s); err != nil {
		return a, fmt.Errorf("primitives: invalid decimal amount %q: %w", s, err)
	}
	if a.v.BitLen() > 128 {
		return Amount{}, ErrAmountOverflow
	}
	return a, nil
}

// Bytes encodes the amount as a big-endian 16-byte array.
func (a Amount) Bytes() [16]byte {
	var full [32]byte
	a.v.WriteToArray32(&full)
	var out [16]byte
	copy(out[:], full[16:])
	return out
}

// String renders the amount in base 10.
func (a Amount) String() string {
	return a.v.Dec()
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares two amounts: -1, 0, or 1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Add returns a+b, wrapping silently on overflow past 128 bits. This
// mirrors the reference ledger, which treats balances as a ring rather
// than panicking on arithmetic that should be provably unreachable
// given already-validated blocks.
func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.v.Add(&a.v, &b.v)
	var mask uint256.Int
	mask.Lsh(uint256.NewInt(1), 128)
	mask.Sub(&mask, uint256.NewInt(1))
	r.v.And(&r.v, &mask)
	return r
}

// Sub returns a-b, wrapping silently on underflow past zero.
func (a Amount) Sub(b Amount) Amount {
	var r Amount
	r.v.Sub(&a.v, &b.v)
	var mask uint256.Int
	mask.Lsh(uint256.NewInt(1), 128)
	mask.Sub(&mask, uint256.NewInt(1))
	r.v.And(&r.v, &mask)
	return r
}

// CheckedSub returns a-b, or ErrAmountOverflow if b > a, for callers
// that must treat an underflow as an error rather than a wrapped value.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, ErrAmountOverflow
	}
	return a.Sub(b), nil
}

// CheckedAdd returns a+b, or ErrAmountOverflow if the true sum exceeds
// the 128-bit raw-unit range (would require creating supply).
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	var full uint256.Int
	overflowed := full.AddOverflow(&a.v, &b.v)
	if overflowed || full.BitLen() > 128 {
		return Amount{}, ErrAmountOverflow
	}
	var r Amount
	r.v = full
	return r, nil
}
