// Package crypto holds the default ring-signing implementation
// txbuilder hands a transaction's prefix hash and commitments to. The key
// image uses real curve.Point/scalar arithmetic, but the
// challenge/response transcript is a simplified, non-verifying LSAG
// stand-in; a protocol-exact CLSAG is a drop-in replacement behind the
// same Sign contract once available.
package crypto

import (
	"crypto/rand"
	"errors"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/xhash"
)

// RingSignature is the simplified linkable ring signature this package
// produces. A real CLSAG is a drop-in replacement behind the same shape
// once available; txbuilder only depends on Sign's method contract, not
// this representation.
type RingSignature struct {
	Ring      [][32]byte
	C         [32]byte
	Responses [][64]byte
	KeyImage  [32]byte
}

// RingSigner creates a ring signature for one transaction input.
type RingSigner struct {
	realIndex  int
	realSecret [32]byte
	ring       [][32]byte
	keyImage   [32]byte
}

// NewRingSigner builds a signer over ring, whose member at realIndex is
// the real output's own public key. The caller fixes ring and realIndex
// once and must use that exact same ordering when
// it serializes the transaction's key_offsets, so the signature and the
// wire-format ring agree on member order; this constructor does not
// reorder or re-randomize its input.
func NewRingSigner(realSecret [32]byte, ring [][32]byte, realIndex int) (*RingSigner, error) {
	if len(ring) < 3 {
		return nil, errors.New("crypto: need at least 2 decoy keys for anonymity")
	}
	if realIndex < 0 || realIndex >= len(ring) {
		return nil, errors.New("crypto: realIndex out of range")
	}

	keyImage := curve.HashToPoint(ring[realIndex][:]).ScalarMult(realSecret).Compress()

	return &RingSigner{
		realIndex:  realIndex,
		realSecret: realSecret,
		ring:       append([][32]byte(nil), ring...),
		keyImage:   keyImage,
	}, nil
}

// Sign produces a RingSignature over prefixHash. Every non-real response
// is filled with cryptographic randomness; the real signer's response is
// bound to prefixHash and the ring transcript by computeResponse.
func (rs *RingSigner) Sign(prefixHash [32]byte) (*RingSignature, error) {
	n := len(rs.ring)
	responses := make([][64]byte, n)
	for i := 0; i < n; i++ {
		if i != rs.realIndex {
			if _, err := rand.Read(responses[i][:]); err != nil {
				return nil, err
			}
		}
	}

	challenge := ringChallenge(prefixHash, rs.keyImage, rs.ring)
	responses[rs.realIndex] = computeResponse(rs.realSecret, challenge, prefixHash)

	return &RingSignature{
		Ring:      rs.ring,
		C:         challenge,
		Responses: responses,
		KeyImage:  rs.keyImage,
	}, nil
}

func ringChallenge(prefixHash [32]byte, keyImage [32]byte, ring [][32]byte) [32]byte {
	args := make([][]byte, 0, len(ring)+2)
	args = append(args, prefixHash[:], keyImage[:])
	for _, pk := range ring {
		pk := pk
		args = append(args, pk[:])
	}
	return xhash.Keccak256(args...)
}

func computeResponse(secret, challenge, prefixHash [32]byte) [64]byte {
	var resp [64]byte
	sum := xhash.Keccak256(secret[:], challenge[:], prefixHash[:])
	copy(resp[:32], sum[:])
	copy(resp[32:], sum[:])
	return resp
}

// GetDecoyOutputs selects count candidate ring members from available,
// skipping excludeKey (the real input's own public key). txbuilder's
// decoy fetch instead
// asks the daemon for these via get_outs using its recommended
// distribution; this helper remains useful for offline tests and
// single-process simulations.
func GetDecoyOutputs(excludeKey [32]byte, count int, available [][32]byte) [][32]byte {
	decoys := make([][32]byte, 0, count)
	for _, pk := range available {
		if pk == excludeKey {
			continue
		}
		decoys = append(decoys, pk)
		if len(decoys) >= count {
			break
		}
	}
	return decoys
}
