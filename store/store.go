// Package store defines the durable UTXO store and wallet state: output
// records keyed by key image, transaction records, the block-hash log
// used for reorg detection, the sync height, and balance/history
// convenience queries on top of those primitives.
package store

import (
	"context"
	"errors"

	"github.com/salvium/wallet-core/enote"
)

// ErrNotFound is returned by single-record lookups that find nothing.
var ErrNotFound = errors.New("store: record not found")

// Filter narrows list_unspent by asset type and, optionally,
// a maximum block height (used by reorg rollback and historical queries).
type Filter struct {
	AssetType string
	// MaxHeight, when non-zero, excludes records above this height.
	MaxHeight uint64
}

// Batch collects every mutation for one block so the caller can commit
// them atomically.
type Batch struct {
	Height    uint64
	BlockHash [32]byte

	NewOutputs []enote.UTXORecord
	NewTxs     []enote.Transaction

	// Spends maps a key image to the spending tx hash, applied via
	// MarkSpent inside the same atomic batch.
	Spends map[[32]byte][32]byte
}

// Store is the durable UTXO/transaction/block-hash log a Wallet reads and
// writes against. Implementations: Memory (in-process) and Badger
// (on-disk).
type Store interface {
	// PutOutput inserts or replaces a UTXO record, keyed by KeyImage.
	PutOutput(ctx context.Context, rec enote.UTXORecord) error
	// GetOutputByKeyImage looks up a record by key image.
	GetOutputByKeyImage(ctx context.Context, keyImage [32]byte) (enote.UTXORecord, error)
	// ListUnspent returns unspent records matching filter.
	ListUnspent(ctx context.Context, filter Filter) ([]enote.UTXORecord, error)
	// MarkSpent marks the record owning keyImage as spent by tx at height.
	MarkSpent(ctx context.Context, keyImage [32]byte, tx [32]byte, height uint64) error
	// SetFrozen toggles a record's Frozen flag, excluding or re-admitting
	// it from builder UTXO selection without marking it spent.
	SetFrozen(ctx context.Context, keyImage [32]byte, frozen bool) error

	PutTransaction(ctx context.Context, tx enote.Transaction) error
	GetTransaction(ctx context.Context, hash [32]byte) (enote.Transaction, error)
	// ListTransactions returns every stored transaction whose containing
	// block height is >= sinceHeight. The order is not defined by the
	// interface: Badger returns ascending height, Memory map order.
	ListTransactions(ctx context.Context, sinceHeight uint64) ([]enote.Transaction, error)

	PutBlockHash(ctx context.Context, height uint64, hash [32]byte) error
	GetBlockHash(ctx context.Context, height uint64) ([32]byte, error)

	// DeleteOutputsAbove, DeleteTransactionsAbove, UnspendOutputsAbove,
	// and DeleteBlockHashesAbove are the reorg rollback surface: they
	// remove or unwind everything above the common ancestor.
	DeleteOutputsAbove(ctx context.Context, height uint64) error
	DeleteTransactionsAbove(ctx context.Context, height uint64) error
	UnspendOutputsAbove(ctx context.Context, height uint64) error
	DeleteBlockHashesAbove(ctx context.Context, height uint64) error

	GetSyncHeight(ctx context.Context) (uint64, error)
	SetSyncHeight(ctx context.Context, height uint64) error

	// CommitBatch applies every mutation in b atomically and advances
	// sync height to b.Height+1 only once the rest has landed.
	CommitBatch(ctx context.Context, b Batch) error

	// Balance sums unspent, unlocked-or-not amounts for assetType.
	Balance(ctx context.Context, assetType string) (uint64, error)

	Close() error
}

// Rollback deletes every record above common and unmarks spends above it,
// then repositions sync height to common+1. It is implemented once here so both
// store backends (and syncengine's tests) share identical semantics.
func Rollback(ctx context.Context, s Store, common uint64) error {
	if err := s.DeleteOutputsAbove(ctx, common); err != nil {
		return err
	}
	if err := s.DeleteTransactionsAbove(ctx, common); err != nil {
		return err
	}
	if err := s.UnspendOutputsAbove(ctx, common); err != nil {
		return err
	}
	if err := s.DeleteBlockHashesAbove(ctx, common); err != nil {
		return err
	}
	return s.SetSyncHeight(ctx, common+1)
}
