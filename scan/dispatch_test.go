package scan

import (
	"testing"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/txser"
)

// TestWalletScanTxLegacy exercises the dispatcher end to end for a
// transaction carrying a single legacy output addressed to the wallet.
func TestWalletScanTxLegacy(t *testing.T) {
	seed := [32]byte{}
	lk := keys.DeriveLegacy(seed)

	var r [32]byte
	r[0] = 11
	out, commitment, ecdh := buildLegacyOutputForDispatch(t, r, lk.ViewPublic, lk.SpendPublic, 0, 77)

	w := &Wallet{LegacyTable: NewLegacyTable(lk), CarrotTable: NewCarrotTable(keys.DeriveCarrot(seed)), ViewSecret: lk.ViewSecret}

	R := curve.ScalarMultBase(r).Compress()
	extra := txser.BuildExtra(enote.EphemeralKeys{TxPubkey: &R})

	tx := enote.Transaction{
		Prefix: enote.Prefix{Outputs: []enote.Output{out}, Extra: extra, Type: enote.TxTransfer},
		RCT:    enote.RCTSignatures{Type: 1, OutPk: [][32]byte{commitment}, EcdhInfo: []enote.EcdhTuple{ecdh}},
	}

	results := w.ScanTx(tx, 0)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Amount != 77 {
		t.Errorf("amount = %d, want 77", results[0].Amount)
	}
}

// TestWalletScanTxCarrotStrictMapping: CARROT outputs with neither an
// additional-pubkeys entry nor a tx_pubkey have no D_e and are skipped.
func TestWalletScanTxCarrotStrictMapping(t *testing.T) {
	seed := [32]byte{4}
	ck := keys.DeriveCarrot(seed)
	w := &Wallet{LegacyTable: NewLegacyTable(keys.DeriveLegacy(seed)), CarrotTable: NewCarrotTable(ck), CarrotKeys: ck}

	out := enote.Output{Target: enote.OutputTarget{Kind: enote.TargetCarrotV1, Key: [32]byte{9}}}
	// No AdditionalPubkeys and no TxPubkey at all: strictly unscannable.
	tx := enote.Transaction{
		Prefix: enote.Prefix{Outputs: []enote.Output{out, out}, Type: enote.TxTransfer},
		RCT:    enote.RCTSignatures{Type: 1, OutPk: make([][32]byte, 2), EcdhInfo: make([]enote.EcdhTuple, 2)},
	}

	results := w.ScanTx(tx, 0)
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0 (no ephemeral pubkeys available)", len(results))
	}
}

func buildLegacyOutputForDispatch(t *testing.T, r [32]byte, viewPub, spendPub [32]byte, idx uint32, amount uint64) (enote.Output, [32]byte, enote.EcdhTuple) {
	t.Helper()
	out, commitment, ecdh := buildLegacyOutput(t, r, viewPub, spendPub, idx, amount, true)
	return out, commitment, ecdh
}
