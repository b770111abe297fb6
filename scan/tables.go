package scan

import (
	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/keys"
)

// LegacyTable maps derived legacy subaddress spend pubkeys back to their
// (major, minor) index and the scalar a recipient adds to the per-output
// shared-secret scalar to recover the one-time secret. Entries are added
// by Track as the caller decides which subaddresses to watch; the main
// address (0,0) is tracked automatically.
type LegacyTable struct {
	lk      keys.LegacyKeySet
	byPub   map[[32]byte]keys.SubaddressIndex
	secrets map[keys.SubaddressIndex][32]byte
}

// NewLegacyTable builds a table pre-seeded with the wallet's main address.
func NewLegacyTable(lk keys.LegacyKeySet) *LegacyTable {
	t := &LegacyTable{
		lk:      lk,
		byPub:   make(map[[32]byte]keys.SubaddressIndex),
		secrets: make(map[keys.SubaddressIndex][32]byte),
	}
	t.Track(keys.SubaddressIndex{})
	return t
}

// Track derives and registers the subaddress at idx so future scans can
// recognize outputs addressed to it.
func (t *LegacyTable) Track(idx keys.SubaddressIndex) {
	sub := keys.DeriveLegacySubaddress(t.lk, idx)
	t.byPub[sub.SpendPub] = idx
	t.secrets[idx] = sub.M
}

// lookup resolves a recovered spend pubkey to its subaddress index and
// the subaddress-adjusted spend secret (spend_secret + m, m = 0 for the
// main address), reporting false when the pubkey is not tracked.
func (t *LegacyTable) lookup(pub [32]byte) (keys.SubaddressIndex, [32]byte, bool) {
	idx, ok := t.byPub[pub]
	if !ok {
		return keys.SubaddressIndex{}, [32]byte{}, false
	}
	m := t.secrets[idx]
	return idx, curve.ScalarAdd(t.lk.SpendSecret, m), true
}

// carrotEntry is one tracked CARROT subaddress: its index and the
// multiplicative scalar k^j_subscal needed to re-derive a key image for
// an output addressed to it.
type carrotEntry struct {
	Index   keys.SubaddressIndex
	Subscal [32]byte
}

// CarrotTable maps derived CARROT subaddress spend pubkeys back to their
// index and subscal, analogous to LegacyTable.
type CarrotTable struct {
	ck    keys.CarrotKeySet
	byPub map[[32]byte]carrotEntry
}

// NewCarrotTable builds a table pre-seeded with the wallet's main account.
func NewCarrotTable(ck keys.CarrotKeySet) *CarrotTable {
	t := &CarrotTable{ck: ck, byPub: make(map[[32]byte]carrotEntry)}
	t.Track(keys.SubaddressIndex{})
	return t
}

// Track derives and registers the CARROT subaddress at idx.
func (t *CarrotTable) Track(idx keys.SubaddressIndex) {
	sub := keys.DeriveCarrotSubaddress(t.ck, idx)
	t.byPub[sub.SpendPub] = carrotEntry{Index: idx, Subscal: sub.Subscal}
}

func (t *CarrotTable) lookup(pub [32]byte) (carrotEntry, bool) {
	e, ok := t.byPub[pub]
	return e, ok
}
