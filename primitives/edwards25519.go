package primitives

import "math/big"

// Hand-rolled edwards25519 point arithmetic, in the same style as the
// secp256k1 curve implementation: affine coordinates over math/big,
// no constant-time guarantees. The reference node signs with Ed25519
// but substitutes Blake2b-512 for SHA-512 internally (see signature.go),
// which rules out using crypto/ed25519 directly since it hardcodes
// SHA-512 and exposes no hook to swap it.

var (
	edP       *big.Int // field prime 2^255 - 19
	edD       *big.Int // curve parameter d
	edOrder   *big.Int // base point order L
	edSqrtM1  *big.Int // a square root of -1 mod p, for point decompression
	edBaseX   *big.Int
	edBaseY   *big.Int
)

func init() {
	edP, _ = new(big.Int).SetString("57896044618658097711785492504343953926634992332820282019728792003956564819949", 10)
	edD, _ = new(big.Int).SetString("37095705934669439343138083508754565189542113879843219016388785533085940283555", 10)
	edOrder, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)
	edSqrtM1, _ = new(big.Int).SetString("19681161376707505956807079304988542015446066515923890162744021073123829784752", 10)
	edBaseX, _ = new(big.Int).SetString("15112221349535400772501151409588531511454012693041857206046113283949847762202", 10)
	edBaseY, _ = new(big.Int).SetString("46316835694926478169428394003475163141307993866256225615783033603165251855960", 10)
}

// edPoint is an affine point on the edwards25519 curve, or the
// identity element (0, 1).
type edPoint struct {
	x, y *big.Int
}

func edIdentity() edPoint {
	return edPoint{x: big.NewInt(0), y: big.NewInt(1)}
}

func edBasePoint() edPoint {
	return edPoint{x: new(big.Int).Set(edBaseX), y: new(big.Int).Set(edBaseY)}
}

// edAdd implements the unified (complete) twisted-Edwards addition law
// for a = -1, valid for both addition and doubling.
func edAdd(p1, p2 edPoint) edPoint {
	x1, y1 := p1.x, p1.y
	x2, y2 := p2.x, p2.y

	x1y2 := new(big.Int).Mul(x1, y2)
	y1x2 := new(big.Int).Mul(y1, x2)
	y1y2 := new(big.Int).Mul(y1, y2)
	x1x2 := new(big.Int).Mul(x1, x2)

	dxxyy := new(big.Int).Mul(edD, x1x2)
	dxxyy.Mul(dxxyy, y1y2)
	dxxyy.Mod(dxxyy, edP)

	xNum := new(big.Int).Add(x1y2, y1x2)
	xNum.Mod(xNum, edP)
	xDen := new(big.Int).Add(big.NewInt(1), dxxyy)
	xDen.Mod(xDen, edP)
	xDen.ModInverse(xDen, edP)

	yNum := new(big.Int).Add(y1y2, x1x2)
	yNum.Mod(yNum, edP)
	yDen := new(big.Int).Sub(big.NewInt(1), dxxyy)
	yDen.Mod(yDen, edP)
	yDen.ModInverse(yDen, edP)

	x3 := new(big.Int).Mul(xNum, xDen)
	x3.Mod(x3, edP)
	y3 := new(big.Int).Mul(yNum, yDen)
	y3.Mod(y3, edP)

	return edPoint{x: x3, y: y3}
}

// edScalarMult computes scalar*p via double-and-add. scalar must be
// non-negative; callers reduce mod edOrder first.
func edScalarMult(scalar *big.Int, p edPoint) edPoint {
	result := edIdentity()
	addend := p
	k := new(big.Int).Set(scalar)
	zero := big.NewInt(0)
	for k.Cmp(zero) > 0 {
		if k.Bit(0) == 1 {
			result = edAdd(result, addend)
		}
		addend = edAdd(addend, addend)
		k.Rsh(k, 1)
	}
	return result
}

// edEncode compresses a point to its 32-byte little-endian form: the
// y-coordinate with the sign of x folded into the top bit.
func edEncode(p edPoint) [32]byte {
	var out [32]byte
	yBytes := p.y.Bytes()
	// big.Int.Bytes is big-endian; reverse into the low bytes of out.
	for i, b := range yBytes {
		out[len(yBytes)-1-i] = b
	}
	if p.x.Bit(0) == 1 {
		out[31] |= 0x80
	}
	return out
}

// edDecode decompresses a 32-byte encoded point, recovering x via the
// curve equation and a modular square root. p must be ≡ 5 mod 8 for
// the sqrt formula used here, which holds for edwards25519's prime.
func edDecode(enc [32]byte) (edPoint, bool) {
	sign := enc[31] >> 7
	yb := make([]byte, 32)
	copy(yb, enc[:])
	yb[31] &= 0x7f
	// reverse to big-endian for big.Int
	for i, j := 0, len(yb)-1; i < j; i, j = i+1, j-1 {
		yb[i], yb[j] = yb[j], yb[i]
	}
	y := new(big.Int).SetBytes(yb)
	if y.Cmp(edP) >= 0 {
		return edPoint{}, false
	}

	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, edP)
	num := new(big.Int).Sub(y2, big.NewInt(1))
	num.Mod(num, edP)
	den := new(big.Int).Mul(edD, y2)
	den.Add(den, big.NewInt(1))
	den.Mod(den, edP)
	denInv := new(big.Int).ModInverse(den, edP)
	if denInv == nil {
		return edPoint{}, false
	}
	x2 := new(big.Int).Mul(num, denInv)
	x2.Mod(x2, edP)

	x, ok := edSqrt(x2)
	if !ok {
		return edPoint{}, false
	}
	if uint8(x.Bit(0)) != sign {
		x.Sub(edP, x)
		x.Mod(x, edP)
	}

	// Reject non-canonical encodings where x is zero but sign bit set.
	if x.Sign() == 0 && sign == 1 {
		return edPoint{}, false
	}

	return edPoint{x: x, y: y}, true
}

// edSqrt computes a square root of a mod edP when one exists, using
// the p ≡ 5 (mod 8) formula (Euler's criterion variant).
func edSqrt(a *big.Int) (*big.Int, bool) {
	// exponent = (p+3)/8
	exp := new(big.Int).Add(edP, big.NewInt(3))
	exp.Rsh(exp, 3)
	cand := new(big.Int).Exp(a, exp, edP)

	sq := new(big.Int).Mul(cand, cand)
	sq.Mod(sq, edP)
	if sq.Cmp(new(big.Int).Mod(a, edP)) == 0 {
		return cand, true
	}

	cand.Mul(cand, edSqrtM1)
	cand.Mod(cand, edP)
	sq.Mul(cand, cand)
	sq.Mod(sq, edP)
	if sq.Cmp(new(big.Int).Mod(a, edP)) == 0 {
		return cand, true
	}
	return nil, false
}
