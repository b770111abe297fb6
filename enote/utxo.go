package enote

import "github.com/salvium/wallet-core/keys"

// UTXORecord is the wallet's durable record of one owned output: the key
// image, one-time pubkey, global index, subaddress index, asset type, and
// spend linkage, alongside the amount/mask/commitment triple recovered at
// scan time.
type UTXORecord struct {
	KeyImage      [32]byte
	OneTimePubkey [32]byte

	TxHash      [32]byte
	OutputIndex uint32
	GlobalIndex uint64
	BlockHeight uint64

	Amount     uint64
	Commitment [32]byte
	Mask       [32]byte

	SubaddressIndex keys.SubaddressIndex
	UnlockTime      uint64
	AssetType       string
	IsCarrot        bool

	IsSpent     bool
	SpentByTx   *[32]byte
	SpentHeight *uint64

	// Frozen marks a record the wallet owner has manually excluded from
	// selection without spending it -- e.g. a UTXO held back for a future
	// specific-output send. It
	// never changes automatically; only an explicit store.SetFrozen call
	// toggles it.
	Frozen bool
}

// IsSpendable reports whether the record may be selected as a builder
// input at chainHeight given spendableAge confirmations.
// UnlockTime here is always a block height, so the lock is cleared exactly when
// chainHeight reaches it.
func (u *UTXORecord) IsSpendable(chainHeight uint64, spendableAge uint64) bool {
	if u.IsSpent || u.Frozen {
		return false
	}
	if chainHeight < u.BlockHeight+spendableAge {
		return false
	}
	return chainHeight >= u.UnlockTime
}
