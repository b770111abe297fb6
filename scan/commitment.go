package scan

import (
	"encoding/binary"

	"github.com/salvium/wallet-core/curve"
)

// amountScalar encodes a cleartext amount as a little-endian 32-byte
// scalar suitable for scalar·G.
func amountScalar(amount uint64) [32]byte {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:8], amount)
	return s
}

// pedersenCommit computes C = amount·G + mask·H, the Pedersen commitment
// invariant every stored UTXO must satisfy.
func pedersenCommit(amount uint64, mask [32]byte) [32]byte {
	aG := curve.ScalarMultBase(amountScalar(amount))
	mH := curve.BaseH().ScalarMult(mask)
	return aG.Add(mH).Compress()
}

// coinbaseCommitment synthesizes the canonical commitment for a
// cleartext coinbase output: mask = 1, so C = amount·G + H.
func coinbaseCommitment(amount uint64) (commitment [32]byte, mask [32]byte) {
	mask = [32]byte{1}
	return pedersenCommit(amount, mask), mask
}

func xor8(a, b [8]byte) [8]byte {
	var out [8]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func leUint32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func leUint64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
