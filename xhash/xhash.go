// Package xhash implements the domain-separated keyed hash primitives
// the key hierarchy and scanner transcripts are built from:
// Blake2b-keyed digests at 3/8/32/64-byte output widths, Keccak-256 for the
// legacy CryptoNote address/prefix checksums, and a variable-length
// Blake2b chain ("Blake2bLong") for Argon2-style seed stretching.
package xhash

import (
	"encoding/binary"

	"github.com/salvium/wallet-core/curve"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// transcript builds len(domain) ‖ domain ‖ args...:
// a single length-prefix byte followed by the domain label
// followed by the raw argument bytes concatenated in order.
func transcript(domain string, args ...[]byte) []byte {
	buf := make([]byte, 0, 1+len(domain)+32*len(args))
	buf = append(buf, byte(len(domain)))
	buf = append(buf, domain...)
	for _, a := range args {
		buf = append(buf, a...)
	}
	return buf
}

func keyedBlake2b(key []byte, size int, domain string, args ...[]byte) []byte {
	h, err := blake2b.New(size, key)
	if err != nil {
		// size is always 3, 8, 32, or 64 and key is always <= 64 bytes in
		// this module, so blake2b.New can only fail on a programmer error.
		panic("xhash: " + err.Error())
	}
	h.Write(transcript(domain, args...))
	return h.Sum(nil)
}

// H32 computes the 32-byte Blake2b-keyed transcript hash.
func H32(key []byte, domain string, args ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], keyedBlake2b(key, 32, domain, args...))
	return out
}

// H8 computes the 8-byte Blake2b-keyed transcript hash, used to mask
// cleartext amounts.
func H8(key []byte, domain string, args ...[]byte) [8]byte {
	var out [8]byte
	copy(out[:], keyedBlake2b(key, 8, domain, args...))
	return out
}

// H3 computes the 3-byte Blake2b-keyed transcript hash used for the
// CARROT view tag fast-reject.
func H3(key []byte, domain string, args ...[]byte) [3]byte {
	var out [3]byte
	copy(out[:], keyedBlake2b(key, 3, domain, args...))
	return out
}

// Hn computes the 64-byte Blake2b-keyed transcript hash and reduces it
// modulo the ed25519 group order, i.e. sc_reduce(Blake2b[key](...)).
func Hn(key []byte, domain string, args ...[]byte) [32]byte {
	wide := keyedBlake2b(key, 64, domain, args...)
	return curve.ScalarReduce(wide)
}

// Keccak256 is the legacy CryptoNote digest used for address checksums
// and prefix/transaction hashes.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Blake2bLong emits outLen bytes by chaining 64-byte Blake2b blocks, with
// the 4-byte little-endian outLen prepended to the first block's input,
// matching the Argon2 seed-stretching construction.
func Blake2bLong(input []byte, outLen int) []byte {
	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(outLen))

	if outLen <= 64 {
		h, _ := blake2b.New(outLen, nil)
		h.Write(lenPrefix[:])
		h.Write(input)
		return h.Sum(nil)
	}

	out := make([]byte, 0, outLen+64)
	h, _ := blake2b.New512(nil)
	h.Write(lenPrefix[:])
	h.Write(input)
	block := h.Sum(nil)
	out = append(out, block[:32]...)

	for len(out) < outLen-64 {
		h, _ := blake2b.New512(nil)
		h.Write(block)
		block = h.Sum(nil)
		out = append(out, block[:32]...)
	}

	remaining := outLen - len(out)
	h2, _ := blake2b.New(remaining, nil)
	h2.Write(block)
	out = append(out, h2.Sum(nil)...)
	return out
}
