package scan

import (
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/txser"
)

// Wallet bundles the per-wallet scanning state the dispatcher needs: the
// legacy and CARROT subaddress tables and the secrets only a scan (never
// the tables themselves) touches.
type Wallet struct {
	LegacyTable *LegacyTable
	CarrotTable *CarrotTable
	ViewSecret  [32]byte
	CarrotKeys  keys.CarrotKeySet
}

// ScanTx scans every output of tx and returns the owned ones. height is
// the coinbase height used to build the CARROT input context when tx has
// no key-image inputs (a miner_tx or protocol_tx); it is ignored for
// transactions that spend real inputs. A CARROT output beyond the first in a multi-output
// transaction is only scanned if the extra stream supplied a per-output
// additional pubkey for it -- no fallback to the shared tx_pubkey.
func (w *Wallet) ScanTx(tx enote.Transaction, height uint64) []Result {
	eph := txser.ParseExtra(tx.Prefix.Extra)

	var firstKeyImage *[32]byte
	for _, in := range tx.Prefix.Inputs {
		if in.Kind == enote.InputKey {
			ki := in.KeyImage
			firstKeyImage = &ki
			break
		}
	}
	inputContext := BuildInputContext(firstKeyImage, height)

	var results []Result
	for i, out := range tx.Prefix.Outputs {
		var outPk [32]byte
		var ecdh enote.EcdhTuple
		if i < len(tx.RCT.OutPk) {
			outPk = tx.RCT.OutPk[i]
		}
		if i < len(tx.RCT.EcdhInfo) {
			ecdh = tx.RCT.EcdhInfo[i]
		}

		var r *Result
		switch out.Target.Kind {
		case enote.TargetKey, enote.TargetTaggedKey:
			if eph.TxPubkey == nil {
				continue
			}
			r, _ = LegacyScan(w.LegacyTable, w.ViewSecret, *eph.TxPubkey, uint32(i), out, tx.RCT.Type, outPk, ecdh)
		case enote.TargetCarrotV1:
			de := carrotEphemeralFor(eph, i)
			r, _ = CarrotScan(w.CarrotTable, w.CarrotKeys, de, inputContext, out, tx.RCT.Type, outPk, ecdh)
		}
		if r != nil {
			r.OutputIndex = uint32(i)
			results = append(results, *r)
		}
	}
	return results
}

// carrotEphemeralFor resolves D_e for output i: the strict i-th entry of
// the additional-pubkeys list when one is present, otherwise the
// tx_pubkey for output 0 only. It never falls back from one to the other.
func carrotEphemeralFor(eph enote.EphemeralKeys, i int) *[32]byte {
	if len(eph.AdditionalPubkeys) > 0 {
		if i >= len(eph.AdditionalPubkeys) {
			return nil
		}
		k := eph.AdditionalPubkeys[i]
		return &k
	}
	if i > 0 {
		return nil
	}
	return eph.TxPubkey
}
