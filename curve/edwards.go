package curve

import (
	"errors"
	"math/big"
)

// ErrInvalidPoint is returned by Decompress when the input is not a
// canonical on-curve ed25519 point. Scanning code must treat this as
// "output not owned".
var ErrInvalidPoint = errors.New("curve: invalid or non-canonical point encoding")

// Point is an ed25519 Edwards point in affine coordinates.
type Point struct {
	x, y *big.Int
}

// Identity is the group identity element (0, 1).
func Identity() Point { return Point{x: big.NewInt(0), y: big.NewInt(1)} }

// baseG is the standard ed25519 base point.
var baseG = Point{
	x: mustBig("15112221349535400772501151409588531511454012693041857206046113283949847762202"),
	y: mustBig("46316835694926478169428394003475163141307993866256225615783033603165251855960"),
}

// BaseG returns the standard ed25519 generator G.
func BaseG() Point { return baseG }

// Equal reports whether two points are the same affine point.
func (p Point) Equal(q Point) bool {
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

// Add computes p+q using the unified affine Edwards addition law.
func (p Point) Add(q Point) Point {
	x1, y1, x2, y2 := p.x, p.y, q.x, q.y
	x1y2 := feMul(x1, y2)
	x2y1 := feMul(x2, y1)
	y1y2 := feMul(y1, y2)
	x1x2 := feMul(x1, x2)
	dxy := feMul(edD, feMul(x1x2, y1y2))

	xNum := feAdd(x1y2, x2y1)
	xDen := feAdd(big.NewInt(1), dxy)
	yNum := feAdd(y1y2, x1x2)
	yDen := feSub(big.NewInt(1), dxy)

	return Point{x: feMul(xNum, feInv(xDen)), y: feMul(yNum, feInv(yDen))}
}

// Double computes p+p.
func (p Point) Double() Point { return p.Add(p) }

// Negate returns -p.
func (p Point) Negate() Point { return Point{x: feNeg(p.x), y: new(big.Int).Set(p.y)} }

// ScalarMult computes scalar*p via double-and-add over the little-endian
// 32-byte scalar (already reduced mod ℓ by the caller where required).
func (p Point) ScalarMult(scalar [32]byte) Point {
	acc := Identity()
	base := p
	for i := 0; i < 256; i++ {
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		if scalar[byteIdx]>>bitIdx&1 == 1 {
			acc = acc.Add(base)
		}
		base = base.Double()
	}
	return acc
}

// ScalarMultBase computes scalar*G.
func ScalarMultBase(scalar [32]byte) Point { return baseG.ScalarMult(scalar) }

// Compress encodes the point as the standard 32-byte little-endian y with
// the sign of x folded into the top bit.
func (p Point) Compress() [32]byte {
	out := bigToLE32(p.y)
	if p.x.Bit(0) == 1 {
		out[31] |= 0x80
	}
	return out
}

// Decompress recovers a point from its 32-byte encoding, rejecting
// non-canonical or off-curve encodings rather than panicking.
func Decompress(enc [32]byte) (Point, error) {
	signBit := enc[31] >> 7
	yBytes := enc
	yBytes[31] &= 0x7f
	y := new(big.Int).SetBytes(reverseBytes(yBytes[:]))
	if y.Cmp(fieldP) >= 0 {
		return Point{}, ErrInvalidPoint
	}

	// x^2 = (y^2-1) / (d*y^2+1)
	y2 := feMul(y, y)
	num := feSub(y2, big.NewInt(1))
	den := feAdd(feMul(edD, y2), big.NewInt(1))
	if den.Sign() == 0 {
		return Point{}, ErrInvalidPoint
	}
	x2 := feMul(num, feInv(den))
	x, ok := feSqrt(x2)
	if !ok {
		return Point{}, ErrInvalidPoint
	}
	if x.Bit(0) != uint(signBit) {
		x = feNeg(x)
	}
	if x.Sign() == 0 && signBit == 1 {
		return Point{}, ErrInvalidPoint
	}
	return Point{x: x, y: y}, nil
}

// IsSmallOrder reports whether p lies in the order-8 torsion subgroup,
// used to reject cofactor-relevant inputs where the protocol requires it.
func (p Point) IsSmallOrder() bool {
	eight := [32]byte{8}
	return p.ScalarMult(eight).Equal(Identity())
}
