package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/salvium/wallet-core/address"
	"github.com/salvium/wallet-core/keys"
)

// walletFile is the on-disk persisted seed; every other key is
// re-derived from it at load time. Derived public keys are a
// view-only-mode cache, never the source of truth, so only the seed is
// written.
type walletFile struct {
	Seed [32]byte `json:"seed"`
}

func saveWalletFile(path string, seed [32]byte) error {
	data, err := json.MarshalIndent(walletFile{Seed: seed}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func loadWalletKeys(path string) (keys.WalletKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return keys.WalletKeys{}, fmt.Errorf("wallet file not found, run 'generate' first: %w", err)
	}
	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return keys.WalletKeys{}, err
	}
	return keys.NewWalletKeys(wf.Seed), nil
}

// networkTags resolves the legacy and CARROT main-address network tags
// for the configured network.
func networkTags(network string) (legacy, carrot address.NetworkTag, err error) {
	switch network {
	case "", "mainnet":
		return address.TagMainnetLegacy, address.TagMainnetCarrot, nil
	case "testnet":
		return address.TagTestnetLegacy, address.TagTestnetCarrot, nil
	case "stagenet":
		return address.TagStagenetLegacy, address.TagStagenetCarrot, nil
	default:
		return 0, 0, fmt.Errorf("unknown network %q", network)
	}
}

// legacyAddress builds the main legacy address.Address for wk under the
// given network's tag.
func legacyAddress(wk keys.WalletKeys, tag address.NetworkTag) address.Address {
	return address.Address{
		Tag:      tag,
		SpendPub: wk.Legacy.SpendPublic,
		ViewPub:  wk.Legacy.ViewPublic,
	}
}

// carrotAddress builds the main CARROT address.Address for wk under the
// given network's tag.
func carrotAddress(wk keys.WalletKeys, tag address.NetworkTag) address.Address {
	return address.Address{
		Tag:      tag,
		SpendPub: wk.Carrot.AccountSpendPubkey,
		ViewPub:  wk.Carrot.PrimaryViewPubkey,
	}
}
