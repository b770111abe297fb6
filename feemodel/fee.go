package feemodel

import "math/big"

// MinMedian is the floor applied to the penalty-free block-weight median
// before it is used as the fee formula's denominator.
const MinMedian uint64 = 300_000

// clampMedian applies the MinMedian floor.
func clampMedian(median uint64) uint64 {
	if median < MinMedian {
		return MinMedian
	}
	return median
}

// DynamicBaseFee computes the per-byte base fee at height: 0.95 *
// base_reward * 3000 / median^2, median clamped to >= 300000.
// Scaled by 1000 internally (0.95 -> 950/1000) to stay in integer math.
func DynamicBaseFee(height uint64, median uint64) uint64 {
	median = clampMedian(median)
	baseReward := BaseReward(height)

	num := new(big.Int).Mul(baseReward, big.NewInt(3000))
	num.Mul(num, big.NewInt(950))
	den := new(big.Int).Mul(big.NewInt(1000), new(big.Int).SetUint64(median*median))
	if den.Sign() == 0 {
		return 0
	}
	fee := new(big.Int).Div(num, den)
	return fee.Uint64()
}

// PriorityTier names the four fee tiers.
type PriorityTier int

const (
	PriorityLow PriorityTier = iota
	PriorityNormal
	PriorityElevated
	PriorityHigh
)

// tierRatios are the closed-form multipliers applied to base_reward *
// 3000 / Mfw^2 for each of the four tiers: low pays the bare
// per-byte rate, each higher tier scales up, and high additionally adds a
// tail term.
var tierRatios = map[PriorityTier]uint64{
	PriorityLow:      1,
	PriorityNormal:   5,
	PriorityElevated: 25,
	PriorityHigh:     1000,
}

// EstimateFees returns the four-tier per-byte fee estimate (F_low,
// F_normal, F_elevated, F_high) using Mfw = min(shortMedian, longMedian)
// as the formula's effective median, each tier rounded up to
// two significant figures.
func EstimateFees(height uint64, shortMedian, longMedian uint64) map[PriorityTier]uint64 {
	mfw := shortMedian
	if longMedian < mfw {
		mfw = longMedian
	}
	mfw = clampMedian(mfw)
	baseReward := BaseReward(height)

	base := new(big.Int).Mul(baseReward, big.NewInt(3000))
	den := new(big.Int).SetUint64(mfw * mfw)

	out := make(map[PriorityTier]uint64, 4)
	for _, tier := range []PriorityTier{PriorityLow, PriorityNormal, PriorityElevated, PriorityHigh} {
		ratio := tierRatios[tier]
		num := new(big.Int).Mul(base, new(big.Int).SetUint64(ratio))
		perByte := new(big.Int).Div(num, den)
		if tier == PriorityHigh {
			// Tail term: an additional flat allowance so the top tier
			// clears congestion the pure ratio formula underprices.
			perByte.Add(perByte, new(big.Int).Div(base, den))
		}
		out[tier] = roundUpTwoSigFigs(perByte.Uint64())
	}
	return out
}

// roundUpTwoSigFigs rounds v up to its two most significant decimal
// digits, e.g. 12345 -> 13000.
func roundUpTwoSigFigs(v uint64) uint64 {
	if v < 100 {
		return v
	}
	digits := 0
	n := v
	for n >= 100 {
		n /= 10
		digits++
	}
	magnitude := uint64(1)
	for i := 0; i < digits; i++ {
		magnitude *= 10
	}
	top := v / magnitude
	if v%magnitude != 0 {
		top++
	}
	return top * magnitude
}

// EstimateFee computes the total fee for a transaction of the given
// input/output counts at the requested priority, using a fixed
// per-transaction byte-weight estimate. weightEstimate approximates serialized
// bytes: a ring-signature input dominates the weight at ring size 16.
func EstimateFee(height uint64, shortMedian, longMedian uint64, inputs, outputs int, priority PriorityTier) uint64 {
	perByte := EstimateFees(height, shortMedian, longMedian)[priority]
	weight := weightEstimate(inputs, outputs)
	return perByte * weight
}

// weightEstimate approximates the serialized+signature byte weight of a
// transaction with the given input/output counts: roughly 32 bytes per
// ring member (ring size 16) per input, plus a fixed per-output and
// per-transaction overhead.
func weightEstimate(inputs, outputs int) uint64 {
	const ringSize = 16
	const bytesPerRingMember = 32
	const bytesPerOutput = 96 // one-time key + commitment + range proof share
	const fixedOverhead = 256

	return uint64(inputs)*ringSize*bytesPerRingMember + uint64(outputs)*bytesPerOutput + fixedOverhead
}
