package txbuilder

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/salvium/wallet-core/enote"
)

// fixedReader yields a scripted sequence of uint64 draws so decoy
// sampling is fully deterministic under an injected Rand.
func fixedReader(values ...uint64) *bytes.Reader {
	var buf []byte
	for _, v := range values {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		buf = append(buf, b[:]...)
	}
	return bytes.NewReader(buf)
}

func TestDrawDecoyIndexBucketed(t *testing.T) {
	// Cumulative distribution: bucket 0 holds global indices [0,10),
	// bucket 1 is empty, bucket 2 holds [10,30).
	dist := []uint64{10, 10, 30}

	// target 5 lands in bucket 0; in-bucket draw 3 -> index 3.
	if idx := drawDecoyIndex(dist, fixedReader(5, 3)); idx != 3 {
		t.Fatalf("bucket-0 draw = %d, want 3", idx)
	}

	// target 25 lands in bucket 2 ([10,30)); in-bucket draw 7 -> index 17.
	if idx := drawDecoyIndex(dist, fixedReader(25, 7)); idx != 17 {
		t.Fatalf("bucket-2 draw = %d, want 17", idx)
	}
}

func TestDrawDecoyIndexSkipsEmptyBuckets(t *testing.T) {
	dist := []uint64{10, 10, 30}
	for target := uint64(0); target < 30; target++ {
		idx := drawDecoyIndex(dist, fixedReader(target, target))
		if idx >= 30 {
			t.Fatalf("draw for target %d out of range: %d", target, idx)
		}
		// The empty bucket spans [10,10); nothing may map into it, which
		// at the index level just means every result is a real output.
		if idx >= 10 && idx < 30 && target < 10 {
			t.Fatalf("target %d in bucket 0 drew index %d outside it", target, idx)
		}
	}
}

func TestShuffleDeterministicUnderInjectedRand(t *testing.T) {
	mk := func() []uint64 {
		recs := []enote.UTXORecord{
			{Amount: 1}, {Amount: 2}, {Amount: 3}, {Amount: 4}, {Amount: 5},
		}
		shuffle(recs, fixedReader(9, 9, 9, 9))
		out := make([]uint64, len(recs))
		for i, r := range recs {
			out[i] = r.Amount
		}
		return out
	}
	a, b := mk(), mk()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle with identical injected randomness diverged: %v vs %v", a, b)
		}
	}
}
