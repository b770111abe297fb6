package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v3"

	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/txser"
)

// Single-byte key prefix per record family.
const (
	prefixOutput    = 'o'
	prefixOutputIdx = 'O' // secondary index: height -> key image, for range delete
	prefixTx        = 't'
	prefixTxHeight  = 'T'
	prefixBlockHash = 'h'
	prefixSyncState = 's'
)

var syncHeightKey = []byte{prefixSyncState, 'h'}

// Badger is the on-disk Store implementation: UTXO records,
// transactions, and the block-hash log, each under its own key prefix,
// with big-endian height keys so range deletes iterate in order.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens or creates a BadgerDB-backed store at path.
func OpenBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Close() error { return b.db.Close() }

func outputKey(keyImage [32]byte) []byte {
	k := make([]byte, 33)
	k[0] = prefixOutput
	copy(k[1:], keyImage[:])
	return k
}

func outputIndexKey(height uint64, keyImage [32]byte) []byte {
	k := make([]byte, 1+8+32)
	k[0] = prefixOutputIdx
	binary.BigEndian.PutUint64(k[1:9], height)
	copy(k[9:], keyImage[:])
	return k
}

func txKey(hash [32]byte) []byte {
	k := make([]byte, 33)
	k[0] = prefixTx
	copy(k[1:], hash[:])
	return k
}

func txHeightKey(height uint64, hash [32]byte) []byte {
	k := make([]byte, 1+8+32)
	k[0] = prefixTxHeight
	binary.BigEndian.PutUint64(k[1:9], height)
	copy(k[9:], hash[:])
	return k
}

func blockHashKey(height uint64) []byte {
	k := make([]byte, 9)
	k[0] = prefixBlockHash
	binary.BigEndian.PutUint64(k[1:], height)
	return k
}

func (b *Badger) PutOutput(_ context.Context, rec enote.UTXORecord) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return putOutputTxn(txn, rec)
	})
}

func putOutputTxn(txn *badger.Txn, rec enote.UTXORecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := txn.Set(outputKey(rec.KeyImage), data); err != nil {
		return err
	}
	return txn.Set(outputIndexKey(rec.BlockHeight, rec.KeyImage), nil)
}

func (b *Badger) GetOutputByKeyImage(_ context.Context, keyImage [32]byte) (enote.UTXORecord, error) {
	var rec enote.UTXORecord
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(outputKey(keyImage))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) })
	})
	return rec, err
}

func (b *Badger) ListUnspent(_ context.Context, filter Filter) ([]enote.UTXORecord, error) {
	var out []enote.UTXORecord
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixOutput}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			var rec enote.UTXORecord
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return err
			}
			if rec.IsSpent {
				continue
			}
			if filter.AssetType != "" && rec.AssetType != filter.AssetType {
				continue
			}
			if filter.MaxHeight != 0 && rec.BlockHeight > filter.MaxHeight {
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (b *Badger) MarkSpent(_ context.Context, keyImage [32]byte, tx [32]byte, height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return markSpentTxn(txn, keyImage, tx, height)
	})
}

func markSpentTxn(txn *badger.Txn, keyImage [32]byte, tx [32]byte, height uint64) error {
	item, err := txn.Get(outputKey(keyImage))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	var rec enote.UTXORecord
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
		return err
	}
	rec.IsSpent = true
	rec.SpentByTx = &tx
	h := height
	rec.SpentHeight = &h
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(outputKey(keyImage), data)
}

func (b *Badger) SetFrozen(_ context.Context, keyImage [32]byte, frozen bool) error {
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(outputKey(keyImage))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		var rec enote.UTXORecord
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return err
		}
		rec.Frozen = frozen
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(outputKey(keyImage), data)
	})
}

func (b *Badger) PutTransaction(_ context.Context, tx enote.Transaction) error {
	return b.db.Update(func(txn *badger.Txn) error { return putTxTxn(txn, tx, 0) })
}

func putTxTxn(txn *badger.Txn, tx enote.Transaction, height uint64) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	h := txser.TxHash(tx)
	if err := txn.Set(txKey(h), data); err != nil {
		return err
	}
	return txn.Set(txHeightKey(height, h), nil)
}

func (b *Badger) GetTransaction(_ context.Context, hash [32]byte) (enote.Transaction, error) {
	var tx enote.Transaction
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(txKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &tx) })
	})
	return tx, err
}

func (b *Badger) ListTransactions(_ context.Context, sinceHeight uint64) ([]enote.Transaction, error) {
	var out []enote.Transaction
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixTxHeight}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			k := it.Item().Key()
			height := binary.BigEndian.Uint64(k[1:9])
			if height < sinceHeight {
				continue
			}
			var hash [32]byte
			copy(hash[:], k[9:])
			item, err := txn.Get(txKey(hash))
			if err != nil {
				continue
			}
			var tx enote.Transaction
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &tx) }); err != nil {
				return err
			}
			out = append(out, tx)
		}
		return nil
	})
	return out, err
}

func (b *Badger) PutBlockHash(_ context.Context, height uint64, hash [32]byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blockHashKey(height), hash[:])
	})
}

func (b *Badger) GetBlockHash(_ context.Context, height uint64) ([32]byte, error) {
	var hash [32]byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockHashKey(height))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { copy(hash[:], val); return nil })
	})
	return hash, err
}

func (b *Badger) DeleteOutputsAbove(_ context.Context, height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixOutputIdx}
		it := txn.NewIterator(opts)
		defer it.Close()
		var toDelete [][]byte
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			h := binary.BigEndian.Uint64(k[1:9])
			if h > height {
				var ki [32]byte
				copy(ki[:], k[9:])
				toDelete = append(toDelete, k, outputKey(ki))
			}
		}
		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Badger) DeleteTransactionsAbove(_ context.Context, height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixTxHeight}
		it := txn.NewIterator(opts)
		defer it.Close()
		var toDelete [][]byte
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			h := binary.BigEndian.Uint64(k[1:9])
			if h > height {
				var hash [32]byte
				copy(hash[:], k[9:])
				toDelete = append(toDelete, k, txKey(hash))
			}
		}
		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Badger) UnspendOutputsAbove(_ context.Context, height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixOutput}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			var rec enote.UTXORecord
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return err
			}
			if rec.IsSpent && rec.SpentHeight != nil && *rec.SpentHeight > height {
				rec.IsSpent = false
				rec.SpentByTx = nil
				rec.SpentHeight = nil
				data, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				if err := txn.Set(item.KeyCopy(nil), data); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (b *Badger) DeleteBlockHashesAbove(_ context.Context, height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixBlockHash}
		it := txn.NewIterator(opts)
		defer it.Close()
		var toDelete [][]byte
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			h := binary.BigEndian.Uint64(k[1:9])
			if h > height {
				toDelete = append(toDelete, k)
			}
		}
		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Badger) GetSyncHeight(_ context.Context) (uint64, error) {
	var height uint64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(syncHeightKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { height = binary.BigEndian.Uint64(val); return nil })
	})
	return height, err
}

func (b *Badger) SetSyncHeight(_ context.Context, height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, height)
		return txn.Set(syncHeightKey, buf)
	})
}

// CommitBatch applies every mutation in one BadgerDB transaction:
// BadgerDB aborts the entire txn on any error, so partial visibility is
// impossible.
func (b *Badger) CommitBatch(_ context.Context, batch Batch) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, rec := range batch.NewOutputs {
			if err := putOutputTxn(txn, rec); err != nil {
				return err
			}
		}
		for _, tx := range batch.NewTxs {
			if err := putTxTxn(txn, tx, batch.Height); err != nil {
				return err
			}
		}
		for ki, tx := range batch.Spends {
			if err := markSpentTxn(txn, ki, tx, batch.Height); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		if err := txn.Set(blockHashKey(batch.Height), batch.BlockHash[:]); err != nil {
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, batch.Height+1)
		return txn.Set(syncHeightKey, buf)
	})
}

func (b *Badger) Balance(_ context.Context, assetType string) (uint64, error) {
	var total uint64
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixOutput}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			var rec enote.UTXORecord
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return err
			}
			if rec.IsSpent {
				continue
			}
			if assetType != "" && rec.AssetType != assetType {
				continue
			}
			total += rec.Amount
		}
		return nil
	})
	return total, err
}
