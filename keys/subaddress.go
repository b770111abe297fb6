package keys

import (
	"encoding/binary"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/xhash"
)

// SubaddressIndex identifies a subaddress by (major, minor); (0,0) is the
// main address.
type SubaddressIndex struct {
	Major uint32
	Minor uint32
}

// IsMain reports whether the index is the (0,0) main address.
func (i SubaddressIndex) IsMain() bool { return i.Major == 0 && i.Minor == 0 }

// LegacySubaddress holds a derived legacy subaddress spend/view pubkey
// pair plus the scalar m needed to recover the one-time secret on spend.
type LegacySubaddress struct {
	M          [32]byte
	SpendPub   [32]byte
	ViewPub    [32]byte
}

// DeriveLegacySubaddress computes the legacy subaddress keys for (major,
// minor): m = H_s("SubAddr\0" ‖ view_secret ‖ LE32(major) ‖ LE32(minor));
// spend_pub' = spend_public + m·G; view_pub' = view_secret · spend_pub'.
func DeriveLegacySubaddress(lk LegacyKeySet, idx SubaddressIndex) LegacySubaddress {
	if idx.IsMain() {
		return LegacySubaddress{SpendPub: lk.SpendPublic, ViewPub: lk.ViewPublic}
	}

	var leMajor, leMinor [4]byte
	binary.LittleEndian.PutUint32(leMajor[:], idx.Major)
	binary.LittleEndian.PutUint32(leMinor[:], idx.Minor)

	m := xhash.Hn(nil, "SubAddr\x00", lk.ViewSecret[:], leMajor[:], leMinor[:])

	basePoint, err := curve.Decompress(lk.SpendPublic)
	if err != nil {
		panic("keys: invalid legacy spend public key")
	}
	subSpendPoint := basePoint.Add(curve.ScalarMultBase(m))
	subSpendPub := subSpendPoint.Compress()

	subViewPoint := subSpendPoint.ScalarMult(lk.ViewSecret)
	subViewPub := subViewPoint.Compress()

	return LegacySubaddress{M: m, SpendPub: subSpendPub, ViewPub: subViewPub}
}

// CarrotSubaddress holds a derived CARROT subaddress spend pubkey plus the
// scalar k^j_subscal needed when re-deriving a key image for that index.
type CarrotSubaddress struct {
	Subscal  [32]byte
	SpendPub [32]byte
}

// DeriveCarrotSubaddress computes the CARROT subaddress keys for (major,
// minor): s^j_gen = H_32[s_ga](major, minor); k^j_subscal =
// H_n(K_s, major, minor, s^j_gen); K^j_s = k^j_subscal · K_s.
// For the main account, k^j_subscal is the scalar 1.
func DeriveCarrotSubaddress(ck CarrotKeySet, idx SubaddressIndex) CarrotSubaddress {
	ksPoint, err := curve.Decompress(ck.AccountSpendPubkey)
	if err != nil {
		panic("keys: invalid CARROT account spend public key")
	}

	if idx.IsMain() {
		one := [32]byte{1}
		return CarrotSubaddress{Subscal: one, SpendPub: ck.AccountSpendPubkey}
	}

	var leMajor, leMinor [4]byte
	binary.LittleEndian.PutUint32(leMajor[:], idx.Major)
	binary.LittleEndian.PutUint32(leMinor[:], idx.Minor)

	sGen := xhash.H32(ck.GenerateAddressSecret[:], "Carrot index extension generator", leMajor[:], leMinor[:])
	subscal := xhash.Hn(sGen[:], "Carrot subaddress scalar", ck.AccountSpendPubkey[:], leMajor[:], leMinor[:])

	subSpendPoint := ksPoint.ScalarMult(subscal)
	return CarrotSubaddress{Subscal: subscal, SpendPub: subSpendPoint.Compress()}
}
