package txbuilder

import (
	"crypto/rand"
	"testing"

	"github.com/salvium/wallet-core/enote"
)

func flatFee(inputs int) uint64 { return 0 }

func recordWithAmount(amount, height uint64) enote.UTXORecord {
	return enote.UTXORecord{Amount: amount, BlockHeight: height}
}

func TestSelectUTXOsLargestFirst(t *testing.T) {
	candidates := []enote.UTXORecord{
		recordWithAmount(10, 1),
		recordWithAmount(100, 2),
		recordWithAmount(50, 3),
	}
	selected, sum, err := selectUTXOs(candidates, 10, 0, 60, 2, LargestFirst, flatFee, rand.Reader)
	if err != nil {
		t.Fatalf("selectUTXOs: %v", err)
	}
	if len(selected) != 1 || selected[0].Amount != 100 {
		t.Fatalf("expected the single 100-amount output selected first, got %+v", selected)
	}
	if sum != 100 {
		t.Fatalf("sum = %d, want 100", sum)
	}
}

func TestSelectUTXOsSmallestFirst(t *testing.T) {
	candidates := []enote.UTXORecord{
		recordWithAmount(10, 1),
		recordWithAmount(100, 2),
		recordWithAmount(50, 3),
	}
	selected, sum, err := selectUTXOs(candidates, 10, 0, 65, 2, SmallestFirst, flatFee, rand.Reader)
	if err != nil {
		t.Fatalf("selectUTXOs: %v", err)
	}
	if len(selected) != 3 {
		t.Fatalf("expected all three outputs needed smallest-first, got %d", len(selected))
	}
	if sum != 160 {
		t.Fatalf("sum = %d, want 160", sum)
	}
}

func TestSelectUTXOsInsufficientFunds(t *testing.T) {
	candidates := []enote.UTXORecord{recordWithAmount(10, 1)}
	_, _, err := selectUTXOs(candidates, 10, 0, 1000, 2, LargestFirst, flatFee, rand.Reader)
	if err == nil {
		t.Fatal("expected an insufficient-funds error")
	}
	insufficient, ok := err.(*ErrInsufficientFunds)
	if !ok {
		t.Fatalf("error type = %T, want *ErrInsufficientFunds", err)
	}
	if insufficient.Have != 10 {
		t.Fatalf("have = %d, want 10", insufficient.Have)
	}
}

func TestSelectUTXOsSkipsUnspendable(t *testing.T) {
	locked := recordWithAmount(100, 5)
	locked.UnlockTime = 1_000_000 // far in the future
	candidates := []enote.UTXORecord{locked, recordWithAmount(20, 1)}
	selected, sum, err := selectUTXOs(candidates, 10, 0, 15, 1, LargestFirst, flatFee, rand.Reader)
	if err != nil {
		t.Fatalf("selectUTXOs: %v", err)
	}
	if len(selected) != 1 || selected[0].Amount != 20 {
		t.Fatalf("expected only the unlocked 20-amount output, got %+v", selected)
	}
	if sum != 20 {
		t.Fatalf("sum = %d, want 20", sum)
	}
}

func TestSelectUTXOsSkipsFrozen(t *testing.T) {
	frozen := recordWithAmount(100, 1)
	frozen.Frozen = true
	candidates := []enote.UTXORecord{frozen, recordWithAmount(20, 1)}
	selected, sum, err := selectUTXOs(candidates, 10, 0, 15, 1, LargestFirst, flatFee, rand.Reader)
	if err != nil {
		t.Fatalf("selectUTXOs: %v", err)
	}
	if len(selected) != 1 || selected[0].Amount != 20 {
		t.Fatalf("expected the frozen 100-amount output to be skipped, got %+v", selected)
	}
	if sum != 20 {
		t.Fatalf("sum = %d, want 20", sum)
	}
}
