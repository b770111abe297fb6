// Package feemodel implements the emission curve, dynamic base fee, and
// four-tier priority fee. The emission constants exceed comfortable
// float64 precision at the premine/supply scale, so
// AlreadyGeneratedCoins uses big.Int throughout rather than assuming
// uint64 headroom holds at every height.
package feemodel

import "math/big"

const (
	// Premine is block 0's emission: 2.21e15 atomic units.
	Premine uint64 = 2_210_000_000_000_000

	// Supply is the terminal emission bound: 1.844e16.
	Supply uint64 = 18_440_000_000_000_000

	// EmissionFactor is the right-shift applied to (SUPPLY - already)
	// each block: 21 - (target_minutes - 1) with a 2-minute target,
	// i.e. 21 - 1 = 20.
	EmissionFactor = 20

	// FinalSubsidy is the emission floor once the shift term decays
	// below it: 30,000,000 * 2.
	FinalSubsidy uint64 = 30_000_000 * 2
)

// AlreadyGeneratedCoins returns already_generated_coins(h): the running
// total emitted by blocks 0 through h inclusive. Height 0 emits
// Premine; each later block emits max((SUPPLY-already)>>20, FINAL_SUBSIDY).
func AlreadyGeneratedCoins(height uint64) *big.Int {
	already := new(big.Int).SetUint64(Premine)
	if height == 0 {
		return already
	}
	supply := new(big.Int).SetUint64(Supply)
	finalSubsidy := new(big.Int).SetUint64(FinalSubsidy)
	for k := uint64(1); k <= height; k++ {
		reward := BlockReward(already, supply, finalSubsidy)
		already.Add(already, reward)
	}
	return already
}

// BlockReward computes max((SUPPLY-already)>>EMISSION_FACTOR, FINAL_SUBSIDY)
// for one block, given the running total already generated.
func BlockReward(already, supply, finalSubsidy *big.Int) *big.Int {
	remaining := new(big.Int).Sub(supply, already)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}
	shifted := new(big.Int).Rsh(remaining, EmissionFactor)
	if shifted.Cmp(finalSubsidy) < 0 {
		return new(big.Int).Set(finalSubsidy)
	}
	return shifted
}

// BaseReward is BlockReward applied to AlreadyGeneratedCoins(height),
// i.e. the reward of the block that follows height.
func BaseReward(height uint64) *big.Int {
	already := AlreadyGeneratedCoins(height)
	supply := new(big.Int).SetUint64(Supply)
	finalSubsidy := new(big.Int).SetUint64(FinalSubsidy)
	return BlockReward(already, supply, finalSubsidy)
}
