// Package curve implements the ed25519/X25519 group and field operations
// the wallet core needs: scalar reduction mod the ed25519 group order,
// Edwards point addition/compression, the Montgomery X25519 ladder with
// Salvium's non-standard clamping, and hash-to-point.
//
// Everything here is built on math/big rather than a fixed-radix constant
// time implementation. That trades the side-channel resistance a
// production field-arithmetic library would have for straightforward,
// auditable correctness; this package makes no side-channel guarantees
// beyond what math/big itself provides, which is none.
// Callers that need hardened arithmetic should swap this package
// for one built on a fixed-radix implementation without changing any
// other package in the module.
package curve

import "math/big"

// p = 2^255 - 19, the field modulus shared by ed25519 and X25519.
var fieldP = mustBig("57896044618658097711785492504343953926634992332820282019728792003956564819949")

// order = 2^252 + 27742317777372353535851937790883648493, the ed25519 group order ℓ.
var groupOrder = mustBig("7237005577332262213973186563042994240857116359379907606001950938285454250989")

// edD is the Edwards curve parameter d = -121665/121666 mod p.
var edD = mustBig("37095705934669439343138083508754565189542113879843219016388785533085940283555")

// edD2 = 2*d mod p. Point.Add uses the affine addition law with edD and
// does not read edD2.
var edD2 = new(big.Int).Mod(new(big.Int).Mul(big.NewInt(2), edD), fieldP)

func mustBig(dec string) *big.Int {
	n, ok := new(big.Int).SetString(dec, 10)
	if !ok {
		panic("curve: bad constant " + dec)
	}
	return n
}

func feAdd(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Add(a, b), fieldP) }
func feSub(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Sub(a, b), fieldP) }
func feMul(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Mul(a, b), fieldP) }
func feNeg(a *big.Int) *big.Int    { return new(big.Int).Mod(new(big.Int).Neg(a), fieldP) }

func feInv(a *big.Int) *big.Int {
	exp := new(big.Int).Sub(fieldP, big.NewInt(2))
	return new(big.Int).Exp(a, exp, fieldP)
}

// feSqrt returns a square root of a mod p when one exists; p ≡ 5 (mod 8)
// so the classic Atkin/Tonelli-Shanks shortcut applies.
func feSqrt(a *big.Int) (*big.Int, bool) {
	if a.Sign() == 0 {
		return big.NewInt(0), true
	}
	exp := new(big.Int).Add(fieldP, big.NewInt(3))
	exp.Rsh(exp, 3) // (p+3)/8
	cand := new(big.Int).Exp(a, exp, fieldP)
	if feMul(cand, cand).Cmp(new(big.Int).Mod(a, fieldP)) == 0 {
		return cand, true
	}
	// multiply by sqrt(-1) and retry, the other branch of the p ≡ 5 (mod 8) case.
	sqrtM1 := new(big.Int).Exp(big.NewInt(2), new(big.Int).Rsh(new(big.Int).Sub(fieldP, big.NewInt(1)), 2), fieldP)
	cand2 := feMul(cand, sqrtM1)
	if feMul(cand2, cand2).Cmp(new(big.Int).Mod(a, fieldP)) == 0 {
		return cand2, true
	}
	return nil, false
}

// ScalarReduce reduces a little-endian integer (typically 32 or 64 bytes,
// as produced by a hash) modulo the ed25519 group order ℓ. This is H_n's
// sc_reduce step.
func ScalarReduce(leBytes []byte) [32]byte {
	be := reverseBytes(leBytes)
	n := new(big.Int).SetBytes(be)
	n.Mod(n, groupOrder)
	return bigToLE32(n)
}

// ScalarAdd returns (a+b) mod ℓ, both operands and the result little-endian.
func ScalarAdd(a, b [32]byte) [32]byte {
	an := new(big.Int).SetBytes(reverseBytes(a[:]))
	bn := new(big.Int).SetBytes(reverseBytes(b[:]))
	an.Add(an, bn)
	an.Mod(an, groupOrder)
	return bigToLE32(an)
}

// ScalarMulAdd returns (a*b+c) mod ℓ.
func ScalarMulAdd(a, b, c [32]byte) [32]byte {
	an := new(big.Int).SetBytes(reverseBytes(a[:]))
	bn := new(big.Int).SetBytes(reverseBytes(b[:]))
	cn := new(big.Int).SetBytes(reverseBytes(c[:]))
	an.Mul(an, bn)
	an.Add(an, cn)
	an.Mod(an, groupOrder)
	return bigToLE32(an)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func bigToLE32(n *big.Int) [32]byte {
	be := n.Bytes()
	var out [32]byte
	for i, v := range be {
		out[len(be)-1-i] = v
	}
	return out
}
