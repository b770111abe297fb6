package txbuilder

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/salvium/wallet-core/enote"
)

// Strategy orders a candidate set of unspent outputs before greedy
// accumulation.
type Strategy int

const (
	LargestFirst Strategy = iota
	SmallestFirst
	FIFO
	Random
)

const maxInputs = 150

// selectUTXOs filters candidates to those IsSpendable at chainHeight,
// orders them per strategy, and greedily accumulates until the running
// sum covers target plus the fee estimated for the inputs taken so far
// against outputCount outputs. feeForInputs lets the caller reuse
// feemodel.EstimateFee without selection depending on feemodel directly.
// rng drives the Random strategy's shuffle and is unused by the others.
func selectUTXOs(candidates []enote.UTXORecord, chainHeight, spendableAge, target uint64, outputCount int, strategy Strategy, feeForInputs func(inputs int) uint64, rng io.Reader) ([]enote.UTXORecord, uint64, error) {
	var usable []enote.UTXORecord
	for _, u := range candidates {
		if u.IsSpendable(chainHeight, spendableAge) {
			usable = append(usable, u)
		}
	}

	switch strategy {
	case LargestFirst:
		sort.Slice(usable, func(i, j int) bool { return usable[i].Amount > usable[j].Amount })
	case SmallestFirst:
		sort.Slice(usable, func(i, j int) bool { return usable[i].Amount < usable[j].Amount })
	case FIFO:
		sort.Slice(usable, func(i, j int) bool { return usable[i].BlockHeight < usable[j].BlockHeight })
	case Random:
		shuffle(usable, rng)
	}

	var selected []enote.UTXORecord
	var sum uint64
	for _, u := range usable {
		selected = append(selected, u)
		sum += u.Amount
		if len(selected) > maxInputs {
			return nil, 0, &ErrTooManyInputs{Count: len(selected)}
		}
		need := target + feeForInputs(len(selected))
		if sum >= need {
			return selected, sum, nil
		}
	}

	have := sum
	need := target + feeForInputs(max(len(selected), 1))
	return nil, 0, &ErrInsufficientFunds{Need: need, Have: have}
}

// shuffle applies a Fisher-Yates shuffle drawing from rng.
func shuffle(recs []enote.UTXORecord, rng io.Reader) {
	for i := len(recs) - 1; i > 0; i-- {
		j := randIntn(rng, i+1)
		recs[i], recs[j] = recs[j], recs[i]
	}
}

func randIntn(rng io.Reader, n int) int {
	var b [8]byte
	_, _ = io.ReadFull(rng, b[:])
	return int(binary.LittleEndian.Uint64(b[:]) % uint64(n))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
