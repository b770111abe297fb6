package scan

import (
	"encoding/binary"
	"testing"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/xhash"
)

// buildLegacyOutput runs the forward (sender) direction of the legacy
// derivation to produce a valid stealth output plus its ring-confidential
// fields, for use as a scan test fixture.
func buildLegacyOutput(t *testing.T, r [32]byte, viewPub, spendPub [32]byte, idx uint32, amount uint64, tagged bool) (enote.Output, [32]byte, enote.EcdhTuple) {
	t.Helper()
	viewPubPoint, err := curve.Decompress(viewPub)
	if err != nil {
		t.Fatalf("decompress view pub: %v", err)
	}
	D := viewPubPoint.ScalarMult(r).ScalarMult([32]byte{8})
	Dc := D.Compress()

	var idxBytes [4]byte
	binary.LittleEndian.PutUint32(idxBytes[:], idx)
	hDi := xhash.Hn(nil, "", Dc[:], idxBytes[:])

	spendPoint, err := curve.Decompress(spendPub)
	if err != nil {
		t.Fatalf("decompress spend pub: %v", err)
	}
	Ko := curve.ScalarMultBase(hDi).Add(spendPoint).Compress()

	target := enote.OutputTarget{Kind: enote.TargetKey, Key: Ko}
	if tagged {
		target.Kind = enote.TargetTaggedKey
		target.ViewTag1 = hDi[0]
	}

	s := xhash.H32(nil, "", Dc[:], idxBytes[:])
	mask := xhash.Hn(s[:], "commitment_mask")
	commitment := pedersenCommit(amount, mask)
	encMask := xhash.H8(s[:], "amount")
	var amountBytes [8]byte
	binary.LittleEndian.PutUint64(amountBytes[:], amount)
	ecdh := enote.EcdhTuple{EncryptedAmount: xor8(amountBytes, encMask)}

	return enote.Output{Target: target, Amount: 0}, commitment, ecdh
}

func TestLegacyScanOwnedOutput(t *testing.T) {
	seed := [32]byte{}
	lk := keys.DeriveLegacy(seed)
	table := NewLegacyTable(lk)

	var r [32]byte
	r[0] = 7
	out, commitment, ecdh := buildLegacyOutput(t, r, lk.ViewPublic, lk.SpendPublic, 0, 100, true)
	R := curve.ScalarMultBase(r).Compress()

	res, err := LegacyScan(table, lk.ViewSecret, R, 0, out, 1, commitment, ecdh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("expected output to be recognized as owned")
	}
	if res.Amount != 100 {
		t.Errorf("amount = %d, want 100", res.Amount)
	}
	if pedersenCommit(res.Amount, res.Mask) != commitment {
		t.Error("recovered amount/mask do not reconstruct the commitment")
	}
	if !res.SubaddressIndex.IsMain() {
		t.Errorf("subaddress index = %+v, want main", res.SubaddressIndex)
	}
}

func TestLegacyScanCoinbase(t *testing.T) {
	seed := [32]byte{}
	lk := keys.DeriveLegacy(seed)
	table := NewLegacyTable(lk)

	const premine = 2_210_000_000_000_000
	var r [32]byte
	r[0] = 1
	out, _, ecdh := buildLegacyOutput(t, r, lk.ViewPublic, lk.SpendPublic, 0, premine, false)
	out.Amount = premine
	R := curve.ScalarMultBase(r).Compress()

	res, err := LegacyScan(table, lk.ViewSecret, R, 0, out, 0, [32]byte{}, ecdh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("expected coinbase output to be recognized as owned")
	}
	if res.Amount != premine {
		t.Errorf("amount = %d, want %d", res.Amount, premine)
	}
	if res.Mask != ([32]byte{1}) {
		t.Errorf("coinbase mask = %x, want 1", res.Mask)
	}
}

func TestLegacyScanUnownedOutput(t *testing.T) {
	seed := [32]byte{}
	lk := keys.DeriveLegacy(seed)
	table := NewLegacyTable(lk)

	stranger := keys.DeriveLegacy([32]byte{9, 9, 9})

	var r [32]byte
	r[0] = 7
	out, commitment, ecdh := buildLegacyOutput(t, r, stranger.ViewPublic, stranger.SpendPublic, 0, 100, true)
	R := curve.ScalarMultBase(r).Compress()

	res, err := LegacyScan(table, lk.ViewSecret, R, 0, out, 1, commitment, ecdh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Fatal("expected output addressed to a stranger to be rejected")
	}
}

func TestLegacyScanIdempotent(t *testing.T) {
	seed := [32]byte{}
	lk := keys.DeriveLegacy(seed)
	table := NewLegacyTable(lk)

	var r [32]byte
	r[0] = 3
	out, commitment, ecdh := buildLegacyOutput(t, r, lk.ViewPublic, lk.SpendPublic, 2, 50, true)
	R := curve.ScalarMultBase(r).Compress()

	r1, err1 := LegacyScan(table, lk.ViewSecret, R, 2, out, 1, commitment, ecdh)
	r2, err2 := LegacyScan(table, lk.ViewSecret, R, 2, out, 1, commitment, ecdh)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if r1 == nil || r2 == nil || *r1 != *r2 {
		t.Fatalf("scan is not idempotent: %+v vs %+v", r1, r2)
	}
}
