package scan

import (
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/txser"
)

// ScanMempoolTx scans an unconfirmed transaction the same way ScanTx
// scans a confirmed one, but returns enote.PendingOutput records rather
// than enote.UTXORecord-shaped Results, so a caller can never write a
// mempool observation into confirmed wallet state by mistake: the store
// holds confirmed records only. ScanTx is called with height 0, which
// only a transaction without key-image inputs would use for its CARROT
// input context. observedFee is recorded on each result as ObservedAtFee.
func (w *Wallet) ScanMempoolTx(tx enote.Transaction, observedFee uint64) []enote.PendingOutput {
	results := w.ScanTx(tx, 0)
	txHash := txser.TxHash(tx)
	out := make([]enote.PendingOutput, len(results))
	for i, r := range results {
		out[i] = enote.PendingOutput{
			OneTimePubkey:   r.OneTimePubkey,
			TxHash:          txHash,
			Amount:          r.Amount,
			Commitment:      r.Commitment,
			Mask:            r.Mask,
			SubaddressIndex: r.SubaddressIndex,
			IsCarrot:        r.IsCarrot,
			ObservedAtFee:   observedFee,
		}
	}
	return out
}
