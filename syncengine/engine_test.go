package syncengine

import (
	"context"
	"testing"

	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/scan"
	"github.com/salvium/wallet-core/store"
)

func newTestWallet() *scan.Wallet {
	// An arbitrary wallet key set; no test transaction carries an output
	// addressed to it, so ScanTx always returns no results. These tests
	// exercise height/hash bookkeeping and reorg rollback, not ownership
	// recovery (that's scan's own test suite).
	var viewSecret [32]byte
	viewSecret[0] = 0x42
	lk := keys.LegacyKeySet{ViewSecret: viewSecret}
	ck := keys.CarrotKeySet{}
	return &scan.Wallet{
		LegacyTable: scan.NewLegacyTable(lk),
		CarrotTable: scan.NewCarrotTable(ck),
		ViewSecret:  viewSecret,
		CarrotKeys:  ck,
	}
}

// TestSyncEngineResumability: a sync stopped
// partway and restarted picks up from the persisted sync height rather
// than rescanning from genesis.
func TestSyncEngineResumability(t *testing.T) {
	ctx := context.Background()
	daemon := newFakeDaemon(5, 0x01)
	db := store.NewMemory()
	e := New(daemon, db, newTestWallet(), nil, nil)

	if err := e.Start(ctx, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.State() != Complete {
		t.Fatalf("state = %v, want Complete", e.State())
	}
	h, err := db.GetSyncHeight(ctx)
	if err != nil || h != 5 {
		t.Fatalf("sync height = %d, %v; want 5", h, err)
	}

	// Extend the chain and sync again; the engine must resume at height
	// 5, not rescan from 0.
	daemon.chain = append(daemon.chain, fakeBlock{hash: hashFor(5, 0x01)}, fakeBlock{hash: hashFor(6, 0x01)})
	if err := e.Start(ctx, nil); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	h, err = db.GetSyncHeight(ctx)
	if err != nil || h != 7 {
		t.Fatalf("sync height after resume = %d, %v; want 7", h, err)
	}
	for height := uint64(0); height < 7; height++ {
		if _, err := db.GetBlockHash(ctx, height); err != nil {
			t.Errorf("GetBlockHash(%d): %v", height, err)
		}
	}
}

// TestSyncEngineReorgMonotonicity: after a detected
// reorg, every stored block hash and the sync height reflect the new
// chain, and nothing above the common ancestor survives from the old one.
func TestSyncEngineReorgMonotonicity(t *testing.T) {
	ctx := context.Background()
	daemon := newFakeDaemon(6, 0x01)
	db := store.NewMemory()
	e := New(daemon, db, newTestWallet(), nil, nil)

	if err := e.Start(ctx, nil); err != nil {
		t.Fatalf("initial Start: %v", err)
	}

	oldHashAt4, err := db.GetBlockHash(ctx, 4)
	if err != nil {
		t.Fatalf("GetBlockHash(4): %v", err)
	}

	// Fork at height 4: heights 0-3 are the common ancestor chain, 4+
	// diverge onto a new, longer tip.
	daemon.fork(4, 0x02, 8)

	events := e.Events()
	if err := e.Start(ctx, nil); err != nil {
		t.Fatalf("post-reorg Start: %v", err)
	}
	if e.State() != Complete {
		t.Fatalf("state after reorg = %v, want Complete", e.State())
	}

	sawReorg := false
drain:
	for {
		select {
		case ev := <-events:
			if ev.Kind == "reorg" {
				sawReorg = true
				if ev.CommonHeight != 3 {
					t.Errorf("reorg common height = %d, want 3", ev.CommonHeight)
				}
			}
		default:
			break drain
		}
	}
	if !sawReorg {
		t.Fatalf("expected a reorg event")
	}

	newHashAt4, err := db.GetBlockHash(ctx, 4)
	if err != nil {
		t.Fatalf("GetBlockHash(4) post-reorg: %v", err)
	}
	if newHashAt4 == oldHashAt4 {
		t.Fatalf("block 4's stored hash did not change after reorg")
	}

	h, err := db.GetSyncHeight(ctx)
	if err != nil || h != 8 {
		t.Fatalf("sync height post-reorg = %d, %v; want 8", h, err)
	}
	for height := uint64(0); height < 4; height++ {
		got, err := db.GetBlockHash(ctx, height)
		if err != nil {
			t.Fatalf("GetBlockHash(%d) ancestor: %v", height, err)
		}
		if got != hashFor(height, 0x01) {
			t.Errorf("ancestor block %d hash changed unexpectedly", height)
		}
	}
}
