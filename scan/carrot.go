package scan

import (
	"encoding/binary"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/xhash"
)

// CarrotScan implements the CARROT scanning path. enoteEphemeral is D_e
// for this output: extra's tx_pubkey tag for a single-destination
// transaction, or the i-th entry of the additional-pubkeys list --
// callers must follow the strict per-output mapping and pass nil rather
// than falling back to a shared tx_pubkey when no per-output entry
// exists. inputContext is built by BuildInputContext. outPk/ecdh carry
// the commitment and encrypted amount; for a coinbase output amount is
// read from out.Amount and the commitment is synthesized. A nil, nil
// return means the output is not owned.
func CarrotScan(
	table *CarrotTable,
	ck keys.CarrotKeySet,
	enoteEphemeral *[32]byte,
	inputContext [33]byte,
	out enote.Output,
	rctType uint8,
	outPk [32]byte,
	ecdh enote.EcdhTuple,
) (*Result, error) {
	if enoteEphemeral == nil {
		return nil, nil
	}
	De := *enoteEphemeral

	// s_sr_unctx = X25519(k_vi, D_e).
	sSrUnctx := curve.X25519(ck.ViewIncomingKey, De)

	// Fast reject via the 3-byte view tag before any further work.
	tag := xhash.H3(sSrUnctx[:], "Carrot view tag", inputContext[:], out.Target.Key[:])
	if tag != out.Target.ViewTag3 {
		return nil, nil
	}

	sSrCtx := xhash.H32(sSrUnctx[:], "Carrot sender-receiver secret", De[:], inputContext[:])

	var commitment, coinbaseMask [32]byte
	var amount uint64
	var ca [32]byte // C_a: the commitment used in the key-extension transcript
	if rctType == 0 {
		amount = out.Amount
		commitment, coinbaseMask = coinbaseCommitment(amount)
		ca = commitment
	} else {
		ca = outPk
	}

	kog := xhash.Hn(sSrCtx[:], "Carrot key extension G", ca[:])
	kot := xhash.Hn(sSrCtx[:], "Carrot key extension T", ca[:])

	Ko, err := curve.Decompress(out.Target.Key)
	if err != nil {
		return nil, nil
	}
	ext := curve.ScalarMultBase(kog).Add(curve.BaseT().ScalarMult(kot))
	kjs := Ko.Add(ext.Negate())
	kjsBytes := kjs.Compress()

	entry, ok := table.lookup(kjsBytes)
	if !ok {
		return nil, nil
	}

	if rctType != 0 {
		encMask := xhash.H8(sSrCtx[:], "Carrot encryption mask a", out.Target.Key[:])
		decrypted := xor8(ecdh.EncryptedAmount, encMask)
		amount = binary.LittleEndian.Uint64(decrypted[:])
	}
	var mask [32]byte
	if rctType == 0 {
		// Cleartext coinbase: the canonical commitment carries mask 1,
		// not the transcript-derived one.
		mask = coinbaseMask
	} else {
		enoteType := []byte{0}
		mask = xhash.Hn(sSrCtx[:], "Carrot commitment mask", leUint64(amount), kjsBytes[:], enoteType)
		if pedersenCommit(amount, mask) != outPk {
			return nil, nil
		}
		commitment = outPk
	}

	// x = k_gi · k^j_subscal + k^o_g (main account subscal = scalar 1).
	x := curve.ScalarMulAdd(ck.GenerateImageKey, entry.Subscal, kog)
	hp := curve.HashToPoint(out.Target.Key[:])
	keyImage := hp.ScalarMult(x).Compress()

	return &Result{
		OneTimePubkey:   out.Target.Key,
		KeyImage:        keyImage,
		Amount:          amount,
		Commitment:      commitment,
		Mask:            mask,
		SubaddressIndex: entry.Index,
		IsCarrot:        true,
	}, nil
}
