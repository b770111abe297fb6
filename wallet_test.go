package walletcore

import (
	"context"
	"testing"

	"github.com/salvium/wallet-core/address"
	"github.com/salvium/wallet-core/store"
)

func TestOpenRequiresStore(t *testing.T) {
	_, err := Open(Config{DaemonURL: "http://127.0.0.1:19091"})
	if err == nil {
		t.Fatal("expected an error when Config.Store is nil")
	}
}

func TestOpenDerivesAddresses(t *testing.T) {
	w, err := Open(Config{
		Seed:      [32]byte{0x01, 0x02, 0x03},
		DaemonURL: "http://127.0.0.1:19091",
		Store:     store.NewMemory(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Store.Close()

	legacy := w.LegacyAddress(address.TagMainnetLegacy)
	carrot := w.CarrotAddress(address.TagMainnetCarrot)

	decodedLegacy, err := address.Decode(address.Encode(legacy))
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if decodedLegacy != legacy {
		t.Fatalf("legacy address round trip mismatch: %+v != %+v", decodedLegacy, legacy)
	}

	decodedCarrot, err := address.Decode(address.Encode(carrot))
	if err != nil {
		t.Fatalf("decode carrot: %v", err)
	}
	if decodedCarrot != carrot {
		t.Fatalf("carrot address round trip mismatch: %+v != %+v", decodedCarrot, carrot)
	}

	if legacy.SpendPub == carrot.SpendPub {
		t.Fatal("legacy and CARROT addresses must not share a spend key")
	}
}

func TestWalletBalanceOnEmptyStore(t *testing.T) {
	w, err := Open(Config{
		Seed:      [32]byte{0xAA},
		DaemonURL: "http://127.0.0.1:19091",
		Store:     store.NewMemory(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Store.Close()

	bal, err := w.Balance(context.Background(), "SAL")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 0 {
		t.Fatalf("balance on empty store = %d, want 0", bal)
	}
}
