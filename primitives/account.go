package primitives

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Account identifies a chain by its public key. Blocks reference the
// account they belong to directly; there is no separate address
// format at the storage layer, only at the human-facing encoding.
type Account = Hash

// addressAlphabet is the account-address base32 alphabet. It omits
// characters that are easily confused in print (0, 2, l, v) and is
// not the RFC 4648 alphabet.
const addressAlphabet = "13456789abcdefghijkmnopqrstuwxyz"

var (
	// ErrInvalidAddressPrefix is returned when an address string does
	// not start with a recognised prefix.
	ErrInvalidAddressPrefix = errors.New("primitives: invalid address prefix")
	// ErrInvalidAddressLength is returned when an address's encoded
	// body is the wrong length for its prefix.
	ErrInvalidAddressLength = errors.New("primitives: invalid address length")
	// ErrInvalidAddressChar is returned when an address contains a
	// character outside the address alphabet.
	ErrInvalidAddressChar = errors.New("primitives: invalid address character")
	// ErrInvalidAddressChecksum is returned when an address's trailing
	// checksum does not match its public key.
	ErrInvalidAddressChecksum = errors.New("primitives: invalid address checksum")
)

// addressPrefixes are the recognised human-readable address prefixes,
// all encoding the same underlying scheme. "nano_" is canonical;
// "xrb_" and "node_" are accepted on decode for backward compatibility
// with older wallets and node identities.
var addressPrefixes = []string{"nano_", "xrb_", "node_"}

var bigRadix = big.NewInt(32)

// base32Encode encodes data (interpreted as a big-endian integer) into
// the address alphabet, left-padded with '1' (the zero digit) to width
// characters.
func base32Encode(data []byte, width int) string {
	n := new(big.Int).SetBytes(data)
	var sb strings.Builder
	digits := make([]byte, 0, width)
	zero := big.NewInt(0)
	for n.Cmp(zero) > 0 {
		mod := new(big.Int)
		n.DivMod(n, bigRadix, mod)
		digits = append(digits, addressAlphabet[mod.Int64()])
	}
	for len(digits) < width {
		digits = append(digits, addressAlphabet[0])
	}
	// digits were produced least-significant first; reverse.
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte(digits[i])
	}
	return sb.String()
}

// base32Decode decodes an address-alphabet string into a big-endian
// byte slice of the given width.
func base32Decode(s string, width int) ([]byte, error) {
	n := big.NewInt(0)
	for _, c := range s {
		idx := strings.IndexRune(addressAlphabet, c)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddressChar, c)
		}
		n.Mul(n, bigRadix)
		n.Add(n, big.NewInt(int64(idx)))
	}
	b := n.Bytes()
	if len(b) > width {
		return nil, ErrInvalidAddressLength
	}
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out, nil
}

// addressChecksum computes the 5-byte address checksum: Blake2b-40 of
// the public key, byte-reversed, per the reference encoding.
func addressChecksum(pub Account) []byte {
	h, err := blake2b.New(5, nil)
	if err != nil {
		// blake2b.New only fails for an invalid size or over-long key.
		panic(err)
	}
	h.Write(pub[:])
	check := h.Sum(nil)
	for i, j := 0, len(check)-1; i < j; i, j = i+1, j-1 {
		check[i], check[j] = check[j], check[i]
	}
	return check
}

// EncodeAddress renders an account's public key as a "nano_"-prefixed
// address string: 52 characters of base32-encoded public key followed
// by 8 characters of base32-encoded checksum.
func EncodeAddress(pub Account) string {
	body := base32Encode(pub[:], 52)
	check := base32Encode(addressChecksum(pub), 8)
	return "nano_" + body + check
}

// DecodeAddress parses an address string back into an Account public
// key, validating its checksum.
func DecodeAddress(s string) (Account, error) {
	var prefix string
	for _, p := range addressPrefixes {
		if strings.HasPrefix(s, p) {
			prefix = p
			break
		}
	}
	if prefix == "" {
		return Account{}, ErrInvalidAddressPrefix
	}
	rest := s[len(prefix):]
	if len(rest) != 60 {
		return Account{}, ErrInvalidAddressLength
	}
	body, check := rest[:52], rest[52:]

	keyBytes, err := base32Decode(body, 32)
	if err != nil {
		return Account{}, err
	}
	var acct Account
	copy(acct[:], keyBytes)

	wantCheck, err := base32Decode(check, 5)
	if err != nil {
		return Account{}, err
	}
	if string(wantCheck) != string(addressChecksum(acct)) {
		return Account{}, ErrInvalidAddressChecksum
	}
	return acct, nil
}
