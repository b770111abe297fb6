package store

import (
	"context"
	"sort"
	"sync"

	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/txser"
)

// Memory is the in-memory Store implementation: outputs indexed by key
// image, a transaction table, and a block-hash log, with whole-batch
// atomicity provided by holding the single mutex for the duration of
// CommitBatch.
type Memory struct {
	mu sync.RWMutex

	outputs      map[[32]byte]enote.UTXORecord
	transactions map[[32]byte]enote.Transaction
	txHeights    map[[32]byte]uint64
	blockHashes  map[uint64][32]byte
	syncHeight   uint64
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		outputs:      make(map[[32]byte]enote.UTXORecord),
		transactions: make(map[[32]byte]enote.Transaction),
		txHeights:    make(map[[32]byte]uint64),
		blockHashes:  make(map[uint64][32]byte),
	}
}

func (m *Memory) PutOutput(_ context.Context, rec enote.UTXORecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[rec.KeyImage] = rec
	return nil
}

func (m *Memory) GetOutputByKeyImage(_ context.Context, keyImage [32]byte) (enote.UTXORecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.outputs[keyImage]
	if !ok {
		return enote.UTXORecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListUnspent(_ context.Context, filter Filter) ([]enote.UTXORecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []enote.UTXORecord
	for _, rec := range m.outputs {
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
	sort.Slice(out, func(i, j int) bool { return out[i].GlobalIndex < out[j].GlobalIndex })
	return out, nil
}

func (m *Memory) MarkSpent(_ context.Context, keyImage [32]byte, tx [32]byte, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.outputs[keyImage]
	if !ok {
		return ErrNotFound
	}
	rec.IsSpent = true
	rec.SpentByTx = &tx
	h := height
	rec.SpentHeight = &h
	m.outputs[keyImage] = rec
	return nil
}

func (m *Memory) SetFrozen(_ context.Context, keyImage [32]byte, frozen bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.outputs[keyImage]
	if !ok {
		return ErrNotFound
	}
	rec.Frozen = frozen
	m.outputs[keyImage] = rec
	return nil
}

func (m *Memory) PutTransaction(_ context.Context, tx enote.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := txHash(tx)
	m.transactions[h] = tx
	if _, ok := m.txHeights[h]; !ok {
		m.txHeights[h] = 0
	}
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, hash [32]byte) (enote.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.transactions[hash]
	if !ok {
		return enote.Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (m *Memory) ListTransactions(_ context.Context, sinceHeight uint64) ([]enote.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []enote.Transaction
	for h, tx := range m.transactions {
		if m.txHeights[h] >= sinceHeight {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *Memory) PutBlockHash(_ context.Context, height uint64, hash [32]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockHashes[height] = hash
	return nil
}

func (m *Memory) GetBlockHash(_ context.Context, height uint64) ([32]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.blockHashes[height]
	if !ok {
		return [32]byte{}, ErrNotFound
	}
	return h, nil
}

func (m *Memory) DeleteOutputsAbove(_ context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rec := range m.outputs {
		if rec.BlockHeight > height {
			delete(m.outputs, k)
		}
	}
	return nil
}

func (m *Memory) DeleteTransactionsAbove(_ context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, h := range m.txHeights {
		if h > height {
			delete(m.transactions, k)
			delete(m.txHeights, k)
		}
	}
	return nil
}

func (m *Memory) UnspendOutputsAbove(_ context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rec := range m.outputs {
		if rec.IsSpent && rec.SpentHeight != nil && *rec.SpentHeight > height {
			rec.IsSpent = false
			rec.SpentByTx = nil
			rec.SpentHeight = nil
			m.outputs[k] = rec
		}
	}
	return nil
}

func (m *Memory) DeleteBlockHashesAbove(_ context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h := range m.blockHashes {
		if h > height {
			delete(m.blockHashes, h)
		}
	}
	return nil
}

func (m *Memory) GetSyncHeight(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.syncHeight, nil
}

func (m *Memory) SetSyncHeight(_ context.Context, height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncHeight = height
	return nil
}

// CommitBatch applies every mutation in b while holding the single
// mutex; a half-committed batch is never observable.
func (m *Memory) CommitBatch(_ context.Context, b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range b.NewOutputs {
		m.outputs[rec.KeyImage] = rec
	}
	for _, tx := range b.NewTxs {
		h := txHash(tx)
		m.transactions[h] = tx
		m.txHeights[h] = b.Height
	}
	for ki, tx := range b.Spends {
		rec, ok := m.outputs[ki]
		if !ok {
			continue
		}
		rec.IsSpent = true
		rec.SpentByTx = &tx
		h := b.Height
		rec.SpentHeight = &h
		m.outputs[ki] = rec
	}
	m.blockHashes[b.Height] = b.BlockHash
	m.syncHeight = b.Height + 1
	return nil
}

func (m *Memory) Balance(_ context.Context, assetType string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total uint64
	for _, rec := range m.outputs {
		if rec.IsSpent {
			continue
		}
		if assetType != "" && rec.AssetType != assetType {
			continue
		}
		total += rec.Amount
	}
	return total, nil
}

func (m *Memory) Close() error { return nil }

// txHash is the map key for a transaction: the canonical protocol hash,
// so a stored transaction is addressable the same way the
// daemon and the scanner address it.
func txHash(tx enote.Transaction) [32]byte {
	return txser.TxHash(tx)
}
