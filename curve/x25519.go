package curve

import "math/big"

// a24 = (486662-2)/4, the Montgomery ladder constant for curve25519.
var a24 = big.NewInt(121665)

// ClampCarrot applies Salvium's non-standard X25519 clamping: unlike
// RFC 7748, bits 0-2 of the scalar are left untouched and bit 254 is left
// untouched; only bit 255 is cleared. Implementations that silently apply
// the standard RFC 7748 clamp here will derive the wrong shared secret and
// fail to detect owned CARROT outputs.
func ClampCarrot(scalar [32]byte) [32]byte {
	out := scalar
	out[31] &= 0x7f
	return out
}

// X25519 computes the Montgomery-ladder scalar multiplication scalar*u
// using Salvium's non-standard clamping (ClampCarrot), returning the
// resulting u-coordinate. u is typically a recipient's CARROT ephemeral
// public key D_e; scalar is k_vi.
func X25519(scalar, u [32]byte) [32]byte {
	k := ClampCarrot(scalar)
	uInt := new(big.Int).SetBytes(reverseBytes(u[:]))
	uInt.Mod(uInt, fieldP)

	x1 := uInt
	x2, z2 := big.NewInt(1), big.NewInt(0)
	x3, z3 := new(big.Int).Set(x1), big.NewInt(1)
	swap := 0

	for t := 254; t >= 0; t-- {
		kt := int(k[t/8] >> uint(t%8) & 1)
		swap ^= kt
		x2, x3 = condSwap(swap, x2, x3)
		z2, z3 = condSwap(swap, z2, z3)
		swap = kt

		a := feAdd(x2, z2)
		aa := feMul(a, a)
		b := feSub(x2, z2)
		bb := feMul(b, b)
		e := feSub(aa, bb)
		c := feAdd(x3, z3)
		d := feSub(x3, z3)
		da := feMul(d, a)
		cb := feMul(c, b)

		x3 = feMul(feAdd(da, cb), feAdd(da, cb))
		z3 = feMul(x1, feMul(feSub(da, cb), feSub(da, cb)))
		x2 = feMul(aa, bb)
		z2 = feMul(e, feAdd(aa, feMul(a24, e)))
	}
	x2, x3 = condSwap(swap, x2, x3)
	z2, z3 = condSwap(swap, z2, z3)

	result := feMul(x2, feInv(z2))
	return bigToLE32(result)
}

func condSwap(swap int, a, b *big.Int) (*big.Int, *big.Int) {
	if swap == 1 {
		return new(big.Int).Set(b), new(big.Int).Set(a)
	}
	return a, b
}

// X25519BasePoint is the standard curve25519 Montgomery base point u=9,
// used to derive a CARROT X25519 public key from a clamped private scalar.
var X25519BasePoint = [32]byte{9}
