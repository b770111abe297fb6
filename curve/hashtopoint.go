package curve

import "golang.org/x/crypto/sha3"

// keccak256 is the legacy (pre-FIPS-padding) Keccak-256 digest, duplicated
// from xhash to avoid an import cycle: xhash depends on this package for
// scalar reduction.
func keccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashToPoint derives H_p(data), a point whose discrete log is unknown,
// by try-and-increment: hash the input with a counter appended, treat the
// digest as a compressed point, and keep incrementing the counter until a
// valid canonical encoding decompresses. Used for ring member hashing and
// key-image generation (KI = ko · H_p(Ko)). The digest is Keccak-256,
// the same legacy CryptoNote primitive the rest of the hash surface uses,
// not the padded SHA3-256 variant.
func HashToPoint(data []byte) Point {
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	for counter := byte(0); ; counter++ {
		buf[len(data)] = counter
		digest := keccak256(buf)
		var enc [32]byte
		copy(enc[:], digest[:])
		// Force the sign bit to the conventional value used by the
		// reference try-and-increment construction.
		enc[31] &= 0x7f
		if p, err := Decompress(enc); err == nil {
			// Clear the cofactor so the result lies in the prime-order
			// subgroup, matching the "8·" cofactor clears used elsewhere
			// in the scanner.
			eight := [32]byte{8}
			return p.ScalarMult(eight)
		}
	}
}

// generatorT is the second independent base point used by CARROT
// commitments and key-extension scalars. Its
// discrete log with respect to G is unknown because it is derived purely
// by hashing a fixed domain label into a curve point.
var generatorT = HashToPoint([]byte("Salvium generator T"))

// BaseT returns the fixed second generator T.
func BaseT() Point { return generatorT }

// generatorH is the Pedersen commitment blinding-factor generator used by
// both the legacy and CARROT paths: C = amount·G + mask·H.
var generatorH = HashToPoint([]byte("Salvium generator H"))

// BaseH returns the fixed Pedersen commitment generator H.
func BaseH() Point { return generatorH }
