package txser

import (
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/xhash"
)

// EncodePrefix serializes a Prefix to its canonical byte layout: version
// (varint), unlock_time (varint), vin count and each input, vout count and
// each output, extra length and bytes, tx_type (varint).
func EncodePrefix(p enote.Prefix) []byte {
	var buf []byte
	buf = PutVarint(buf, p.Version)
	buf = PutVarint(buf, p.UnlockTime)

	buf = PutVarint(buf, uint64(len(p.Inputs)))
	for _, in := range p.Inputs {
		buf = encodeInput(buf, in)
	}

	buf = PutVarint(buf, uint64(len(p.Outputs)))
	for _, out := range p.Outputs {
		buf = encodeOutput(buf, out)
	}

	buf = PutVarint(buf, uint64(len(p.Extra)))
	buf = append(buf, p.Extra...)

	buf = PutVarint(buf, uint64(p.Type))
	return buf
}

func encodeInput(buf []byte, in enote.Input) []byte {
	buf = append(buf, byte(in.Kind))
	switch in.Kind {
	case enote.InputGen:
		buf = PutVarint(buf, in.Height)
	case enote.InputKey:
		buf = PutVarint(buf, 0) // amount, always 0 post-RingCT
		buf = PutVarint(buf, uint64(len(in.KeyOffsets)))
		for _, off := range in.KeyOffsets {
			buf = PutVarint(buf, off)
		}
		buf = append(buf, in.KeyImage[:]...)
	}
	return buf
}

func encodeOutput(buf []byte, out enote.Output) []byte {
	buf = PutVarint(buf, out.Amount)
	buf = append(buf, byte(out.Target.Kind))
	buf = append(buf, out.Target.Key[:]...)
	switch out.Target.Kind {
	case enote.TargetTaggedKey:
		buf = append(buf, []byte(out.Target.Asset)...)
		buf = append(buf, 0) // NUL-terminate the asset tag
		buf = append(buf, out.Target.ViewTag1)
	case enote.TargetCarrotV1:
		buf = append(buf, []byte(out.Target.Asset)...)
		buf = append(buf, 0)
		buf = append(buf, out.Target.ViewTag3[:]...)
		if out.Target.EncryptedAnchor != nil {
			buf = append(buf, 1)
			buf = append(buf, out.Target.EncryptedAnchor[:]...)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

// PrefixHash is Keccak(canonical_bytes(prefix)).
func PrefixHash(p enote.Prefix) [32]byte {
	return xhash.Keccak256(EncodePrefix(p))
}

// rctBaseHash hashes the non-prunable RCT fields: type, fee, outPk,
// ecdhInfo.
func rctBaseHash(rct enote.RCTSignatures) [32]byte {
	var buf []byte
	buf = append(buf, rct.Type)
	buf = PutVarint(buf, rct.Fee)
	buf = PutVarint(buf, uint64(len(rct.OutPk)))
	for _, pk := range rct.OutPk {
		buf = append(buf, pk[:]...)
	}
	buf = PutVarint(buf, uint64(len(rct.EcdhInfo)))
	for _, e := range rct.EcdhInfo {
		buf = append(buf, e.EncryptedAmount[:]...)
	}
	return xhash.Keccak256(buf)
}

// TxHash computes the transaction hash: the prefix hash alone for
// coinbase/cleartext transactions (rct.Type == 0), or
// Keccak(prefix_hash ‖ rct_base_hash ‖ prunable_hash) for RingCT
// transactions.
func TxHash(tx enote.Transaction) [32]byte {
	prefixHash := PrefixHash(tx.Prefix)
	if tx.RCT.Type == 0 {
		return prefixHash
	}
	baseHash := rctBaseHash(tx.RCT)
	prunableHash := xhash.Keccak256(tx.RCT.Signatures)
	return xhash.Keccak256(prefixHash[:], baseHash[:], prunableHash[:])
}
