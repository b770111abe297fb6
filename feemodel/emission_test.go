package feemodel

import (
	"math/big"
	"testing"
)

// TestPremine: block 0 emits exactly the premine.
func TestPremine(t *testing.T) {
	got := AlreadyGeneratedCoins(0)
	if got.Uint64() != Premine {
		t.Fatalf("AlreadyGeneratedCoins(0) = %d, want %d", got.Uint64(), Premine)
	}
}

func TestBlockRewardFloorsAtFinalSubsidy(t *testing.T) {
	supply := AlreadyGeneratedCoins(0)
	// Force "remaining" far below the shift floor.
	reward := BlockReward(supply, supply, new(big.Int).SetUint64(FinalSubsidy))
	if reward.Uint64() != FinalSubsidy {
		t.Fatalf("reward = %d, want floor %d", reward.Uint64(), FinalSubsidy)
	}
}

func TestEstimateFeesMonotonic(t *testing.T) {
	fees := EstimateFees(1000, 300_000, 300_000)
	if !(fees[PriorityLow] <= fees[PriorityNormal] &&
		fees[PriorityNormal] <= fees[PriorityElevated] &&
		fees[PriorityElevated] <= fees[PriorityHigh]) {
		t.Fatalf("fee tiers not monotonic: %+v", fees)
	}
}

func TestEstimateFeeScalesWithInputs(t *testing.T) {
	small := EstimateFee(1000, 300_000, 300_000, 1, 2, PriorityNormal)
	large := EstimateFee(1000, 300_000, 300_000, 10, 2, PriorityNormal)
	if large <= small {
		t.Fatalf("fee did not grow with input count: %d vs %d", small, large)
	}
}
