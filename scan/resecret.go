package scan

import (
	"fmt"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/txser"
	"github.com/salvium/wallet-core/xhash"
)

// DeriveInputSecret recomputes the scalar a wallet used as an output's
// key-image secret when it was originally scanned. It runs the same math
// ScanTx ran to recognize the output in the first place, so the scanner
// need not have persisted the secret itself -- only the owning
// transaction, which the store already keeps. blockHeight is the height
// the owning transaction confirmed at; it feeds the CARROT input context
// when tx is a coinbase and is otherwise unused.
func (w *Wallet) DeriveInputSecret(tx enote.Transaction, outputIndex int, blockHeight uint64) ([32]byte, error) {
	if outputIndex < 0 || outputIndex >= len(tx.Prefix.Outputs) {
		return [32]byte{}, fmt.Errorf("scan: output index %d out of range", outputIndex)
	}
	out := tx.Prefix.Outputs[outputIndex]
	eph := txser.ParseExtra(tx.Prefix.Extra)

	switch out.Target.Kind {
	case enote.TargetKey, enote.TargetTaggedKey:
		return w.deriveLegacyInputSecret(eph, out, outputIndex)
	case enote.TargetCarrotV1:
		return w.deriveCarrotInputSecret(tx, eph, out, outputIndex, blockHeight)
	default:
		return [32]byte{}, fmt.Errorf("scan: unrecognized target kind")
	}
}

func (w *Wallet) deriveLegacyInputSecret(eph enote.EphemeralKeys, out enote.Output, outputIndex int) ([32]byte, error) {
	if eph.TxPubkey == nil {
		return [32]byte{}, fmt.Errorf("scan: no tx_pubkey in extra")
	}
	R, err := curve.Decompress(*eph.TxPubkey)
	if err != nil {
		return [32]byte{}, fmt.Errorf("scan: decompress tx_pubkey: %w", err)
	}
	D := R.ScalarMult(w.ViewSecret).ScalarMult([32]byte{8})
	Dc := D.Compress()
	hDi := xhash.Hn(nil, "", Dc[:], leUint32(uint32(outputIndex)))

	Ko, err := curve.Decompress(out.Target.Key)
	if err != nil {
		return [32]byte{}, fmt.Errorf("scan: decompress output key: %w", err)
	}
	pPrime := Ko.Add(curve.ScalarMultBase(hDi).Negate())

	_, subSecret, ok := w.LegacyTable.lookup(pPrime.Compress())
	if !ok {
		return [32]byte{}, fmt.Errorf("scan: output not owned by this wallet")
	}
	return curve.ScalarAdd(hDi, subSecret), nil
}

func (w *Wallet) deriveCarrotInputSecret(tx enote.Transaction, eph enote.EphemeralKeys, out enote.Output, outputIndex int, blockHeight uint64) ([32]byte, error) {
	var firstKeyImage *[32]byte
	for _, in := range tx.Prefix.Inputs {
		if in.Kind == enote.InputKey {
			ki := in.KeyImage
			firstKeyImage = &ki
			break
		}
	}
	inputContext := BuildInputContext(firstKeyImage, blockHeight)

	de := carrotEphemeralFor(eph, outputIndex)
	if de == nil {
		return [32]byte{}, fmt.Errorf("scan: no enote ephemeral for output %d", outputIndex)
	}
	sSrUnctx := curve.X25519(w.CarrotKeys.ViewIncomingKey, *de)
	sSrCtx := xhash.H32(sSrUnctx[:], "Carrot sender-receiver secret", de[:], inputContext[:])

	var ca [32]byte
	if tx.RCT.Type == 0 {
		ca, _ = coinbaseCommitment(out.Amount)
	} else if outputIndex < len(tx.RCT.OutPk) {
		ca = tx.RCT.OutPk[outputIndex]
	}
	kog := xhash.Hn(sSrCtx[:], "Carrot key extension G", ca[:])
	kot := xhash.Hn(sSrCtx[:], "Carrot key extension T", ca[:])

	Ko, err := curve.Decompress(out.Target.Key)
	if err != nil {
		return [32]byte{}, fmt.Errorf("scan: decompress output key: %w", err)
	}
	ext := curve.ScalarMultBase(kog).Add(curve.BaseT().ScalarMult(kot))
	kjs := Ko.Add(ext.Negate())

	entry, ok := w.CarrotTable.lookup(kjs.Compress())
	if !ok {
		return [32]byte{}, fmt.Errorf("scan: output not owned by this wallet")
	}
	return curve.ScalarMulAdd(w.CarrotKeys.GenerateImageKey, entry.Subscal, kog), nil
}
