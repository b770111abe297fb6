package keys

import (
	"testing"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/xhash"
)

// TestLegacySubaddressIndependence: distinct
// subaddress indices produce distinct one-time addresses (here, distinct
// subaddress spend public keys, which is what feeds the one-time-key
// derivation downstream in scan/).
func TestLegacySubaddressIndependence(t *testing.T) {
	seed := [32]byte{0x01, 0x02, 0x03}
	lk := DeriveLegacy(seed)

	indices := []SubaddressIndex{
		{Major: 0, Minor: 0},
		{Major: 0, Minor: 1},
		{Major: 1, Minor: 0},
		{Major: 1, Minor: 1},
		{Major: 7, Minor: 42},
	}

	seen := make(map[[32]byte]SubaddressIndex)
	for _, idx := range indices {
		sub := DeriveLegacySubaddress(lk, idx)
		if prior, ok := seen[sub.SpendPub]; ok {
			t.Fatalf("index %+v collides with %+v on spend pub %x", idx, prior, sub.SpendPub)
		}
		seen[sub.SpendPub] = idx
	}
}

func TestLegacySubaddressMainMatchesAccount(t *testing.T) {
	lk := DeriveLegacy([32]byte{0xAA})
	main := DeriveLegacySubaddress(lk, SubaddressIndex{})
	if main.SpendPub != lk.SpendPublic || main.ViewPub != lk.ViewPublic {
		t.Fatalf("main subaddress does not match the account keys")
	}
}

func TestLegacySubaddressDeterministic(t *testing.T) {
	lk := DeriveLegacy([32]byte{0xBB})
	idx := SubaddressIndex{Major: 3, Minor: 9}
	a := DeriveLegacySubaddress(lk, idx)
	b := DeriveLegacySubaddress(lk, idx)
	if a != b {
		t.Fatalf("subaddress derivation is not deterministic: %+v != %+v", a, b)
	}
}

// TestCarrotSubaddressIndependence mirrors the legacy property for the
// CARROT subaddress derivation.
func TestCarrotSubaddressIndependence(t *testing.T) {
	ck := DeriveCarrot([32]byte{0x04, 0x05, 0x06})

	indices := []SubaddressIndex{
		{Major: 0, Minor: 0},
		{Major: 0, Minor: 1},
		{Major: 1, Minor: 0},
		{Major: 2, Minor: 5},
	}

	seen := make(map[[32]byte]SubaddressIndex)
	for _, idx := range indices {
		sub := DeriveCarrotSubaddress(ck, idx)
		if prior, ok := seen[sub.SpendPub]; ok {
			t.Fatalf("index %+v collides with %+v on spend pub %x", idx, prior, sub.SpendPub)
		}
		seen[sub.SpendPub] = idx
	}
}

func TestCarrotSubaddressMainHasUnitScalar(t *testing.T) {
	ck := DeriveCarrot([32]byte{0xCC})
	main := DeriveCarrotSubaddress(ck, SubaddressIndex{})
	want := [32]byte{1}
	if main.Subscal != want {
		t.Fatalf("main account subscal = %x, want 1", main.Subscal)
	}
	if main.SpendPub != ck.AccountSpendPubkey {
		t.Fatalf("main subaddress spend pub does not match account spend pub")
	}
}

// TestDeriveLegacyGenesisSeed: a wallet seeded with 32 zero bytes
// derives spend_secret = sc_reduce(seed) and
// view_secret = sc_reduce(Keccak(spend_secret)).
func TestDeriveLegacyGenesisSeed(t *testing.T) {
	var seed [32]byte
	lk := DeriveLegacy(seed)

	wantSpendSecret := curve.ScalarReduce(seed[:])
	if lk.SpendSecret != wantSpendSecret {
		t.Fatalf("spend secret = %x, want sc_reduce(seed) = %x", lk.SpendSecret, wantSpendSecret)
	}

	digest := xhash.Keccak256(lk.SpendSecret[:])
	wantViewSecret := curve.ScalarReduce(digest[:])
	if lk.ViewSecret != wantViewSecret {
		t.Fatalf("view secret = %x, want sc_reduce(Keccak(spend_secret)) = %x", lk.ViewSecret, wantViewSecret)
	}
}
