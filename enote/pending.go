package enote

import "github.com/salvium/wallet-core/keys"

// PendingOutput is a mempool-observed candidate output, kept deliberately
// distinct from UTXORecord so a caller can never mistake unconfirmed state
// for the confirmed wallet state the core guarantees.
type PendingOutput struct {
	OneTimePubkey   [32]byte
	TxHash          [32]byte
	Amount          uint64
	Commitment      [32]byte
	Mask            [32]byte
	SubaddressIndex keys.SubaddressIndex
	AssetType       string
	IsCarrot        bool
	ObservedAtFee   uint64
}
