package keys

import "crypto/rand"

// WalletKeys bundles every secret derivable from a single 32-byte seed:
// the legacy view/spend pair and the CARROT key set.
type WalletKeys struct {
	Seed   [32]byte
	Legacy LegacyKeySet
	Carrot CarrotKeySet
}

// NewWalletKeys derives both key sets from seed. Derivation is a pure
// function of seed; WalletKeys carries no other state.
func NewWalletKeys(seed [32]byte) WalletKeys {
	return WalletKeys{
		Seed:   seed,
		Legacy: DeriveLegacy(seed),
		Carrot: DeriveCarrot(seed),
	}
}

// GenerateWalletKeys creates a new wallet from 32 bytes of system
// randomness.
func GenerateWalletKeys() (WalletKeys, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return WalletKeys{}, err
	}
	return NewWalletKeys(seed), nil
}
