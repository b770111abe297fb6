package store

import (
	"context"
	"testing"

	"github.com/salvium/wallet-core/enote"
)

func TestMemoryCommitBatchAtomicity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var ki [32]byte
	ki[0] = 1
	rec := enote.UTXORecord{KeyImage: ki, BlockHeight: 5, Amount: 100, AssetType: "SAL"}

	if err := m.CommitBatch(ctx, Batch{Height: 5, NewOutputs: []enote.UTXORecord{rec}}); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	h, err := m.GetSyncHeight(ctx)
	if err != nil || h != 6 {
		t.Fatalf("sync height = %d, %v; want 6", h, err)
	}

	got, err := m.GetOutputByKeyImage(ctx, ki)
	if err != nil {
		t.Fatalf("GetOutputByKeyImage: %v", err)
	}
	if got.Amount != 100 {
		t.Errorf("amount = %d, want 100", got.Amount)
	}
}

// TestKeyImageUniqueness: unspent UTXOs never share
// a key image. PutOutput is keyed by key image, so a second insert with
// the same image necessarily replaces rather than duplicates.
func TestKeyImageUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var ki [32]byte
	ki[0] = 9
	_ = m.PutOutput(ctx, enote.UTXORecord{KeyImage: ki, Amount: 1})
	_ = m.PutOutput(ctx, enote.UTXORecord{KeyImage: ki, Amount: 2})

	unspent, err := m.ListUnspent(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListUnspent: %v", err)
	}
	count := 0
	for _, r := range unspent {
		if r.KeyImage == ki {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("found %d records for one key image, want 1", count)
	}
}

// TestSetFrozenExcludesFromSpendability: a frozen
// record must not be selectable even though it is unspent and unlocked.
func TestSetFrozenExcludesFromSpendability(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var ki [32]byte
	ki[0] = 7
	rec := enote.UTXORecord{KeyImage: ki, BlockHeight: 1, Amount: 50}
	if err := m.PutOutput(ctx, rec); err != nil {
		t.Fatalf("PutOutput: %v", err)
	}

	got, _ := m.GetOutputByKeyImage(ctx, ki)
	if !got.IsSpendable(100, 0) {
		t.Fatalf("record should be spendable before freezing")
	}

	if err := m.SetFrozen(ctx, ki, true); err != nil {
		t.Fatalf("SetFrozen: %v", err)
	}
	got, _ = m.GetOutputByKeyImage(ctx, ki)
	if got.IsSpendable(100, 0) {
		t.Errorf("frozen record reported spendable")
	}

	if err := m.SetFrozen(ctx, ki, false); err != nil {
		t.Fatalf("SetFrozen(unfreeze): %v", err)
	}
	got, _ = m.GetOutputByKeyImage(ctx, ki)
	if !got.IsSpendable(100, 0) {
		t.Errorf("unfrozen record reported not spendable")
	}
}

// TestReorgMonotonicity: after Rollback to common
// ancestor c, no record remains above c.
func TestReorgMonotonicity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for h := uint64(0); h < 10; h++ {
		var ki [32]byte
		ki[0] = byte(h)
		rec := enote.UTXORecord{KeyImage: ki, BlockHeight: h}
		var hash [32]byte
		hash[0] = byte(h)
		if err := m.CommitBatch(ctx, Batch{Height: h, BlockHash: hash, NewOutputs: []enote.UTXORecord{rec}}); err != nil {
			t.Fatalf("CommitBatch(%d): %v", h, err)
		}
	}

	if err := Rollback(ctx, m, 5); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	unspent, err := m.ListUnspent(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListUnspent: %v", err)
	}
	for _, r := range unspent {
		if r.BlockHeight > 5 {
			t.Errorf("record at height %d survived rollback to 5", r.BlockHeight)
		}
	}

	syncHeight, _ := m.GetSyncHeight(ctx)
	if syncHeight != 6 {
		t.Errorf("sync height after rollback = %d, want 6", syncHeight)
	}

	for h := uint64(6); h <= 9; h++ {
		if _, err := m.GetBlockHash(ctx, h); err == nil {
			t.Errorf("block hash at height %d survived rollback", h)
		}
	}
}
