package scan

import (
	"encoding/binary"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/xhash"
)

// LegacyScan implements the legacy CryptoNote scanning path. txPubkey is
// R from the transaction's extra field;
// outputIndex is the output's position within the transaction; outPk and
// ecdh carry the RingCT commitment and encrypted amount for a non-coinbase
// output (both are ignored for coinbase, where the amount is cleartext on
// out.Amount). A nil, nil return means the output is not owned.
func LegacyScan(
	table *LegacyTable,
	viewSecret [32]byte,
	txPubkey [32]byte,
	outputIndex uint32,
	out enote.Output,
	rctType uint8,
	outPk [32]byte,
	ecdh enote.EcdhTuple,
) (*Result, error) {
	R, err := curve.Decompress(txPubkey)
	if err != nil {
		return nil, nil
	}

	// D = 8 · view_secret · R, the cofactor-cleared ECDH shared point.
	D := R.ScalarMult(viewSecret).ScalarMult([32]byte{8})
	Dc := D.Compress()
	idxBytes := leUint32(outputIndex)

	// H_n(D ‖ i) is used unkeyed and undomained for both the view-tag
	// fast reject and the one-time-key offset.
	hDi := xhash.Hn(nil, "", Dc[:], idxBytes)

	if out.Target.Kind == enote.TargetTaggedKey {
		if hDi[0] != out.Target.ViewTag1 {
			return nil, nil
		}
	}

	Ko, err := curve.Decompress(out.Target.Key)
	if err != nil {
		return nil, nil
	}
	pPrime := Ko.Add(curve.ScalarMultBase(hDi).Negate())

	idx, subSecret, ok := table.lookup(pPrime.Compress())
	if !ok {
		return nil, nil
	}

	var amount uint64
	var mask [32]byte
	var commitment [32]byte
	if rctType == 0 {
		amount = out.Amount
		commitment, mask = coinbaseCommitment(amount)
	} else {
		s := xhash.H32(nil, "", Dc[:], idxBytes)
		encMask := xhash.H8(s[:], "amount")
		decrypted := xor8(ecdh.EncryptedAmount, encMask)
		amount = binary.LittleEndian.Uint64(decrypted[:])
		mask = xhash.Hn(s[:], "commitment_mask")
		if pedersenCommit(amount, mask) != outPk {
			return nil, nil
		}
		commitment = outPk
	}

	ko := curve.ScalarAdd(hDi, subSecret)
	hp := curve.HashToPoint(out.Target.Key[:])
	keyImage := hp.ScalarMult(ko).Compress()

	return &Result{
		OneTimePubkey:   out.Target.Key,
		KeyImage:        keyImage,
		Amount:          amount,
		Commitment:      commitment,
		Mask:            mask,
		SubaddressIndex: idx,
		IsCarrot:        false,
	}, nil
}
