// Package keys derives the full legacy and CARROT key hierarchies from a
// 32-byte wallet seed, plus legacy and CARROT subaddress keys. All
// derivations are pure functions; nothing here holds state.
package keys

import (
	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/xhash"
)

// LegacyKeySet holds the deterministic CryptoNote-style view/spend pair.
type LegacyKeySet struct {
	SpendSecret [32]byte
	SpendPublic [32]byte
	ViewSecret  [32]byte
	ViewPublic  [32]byte
}

// DeriveLegacy derives the legacy key set from the wallet seed:
// spend_secret = sc_reduce(seed),
// view_secret = sc_reduce(Keccak(spend_secret)).
func DeriveLegacy(seed [32]byte) LegacyKeySet {
	spendSecret := curve.ScalarReduce(seed[:])
	spendPublic := curve.ScalarMultBase(spendSecret).Compress()

	viewDigest := xhash.Keccak256(spendSecret[:])
	viewSecret := curve.ScalarReduce(viewDigest[:])
	viewPublic := curve.ScalarMultBase(viewSecret).Compress()

	return LegacyKeySet{
		SpendSecret: spendSecret,
		SpendPublic: spendPublic,
		ViewSecret:  viewSecret,
		ViewPublic:  viewPublic,
	}
}
