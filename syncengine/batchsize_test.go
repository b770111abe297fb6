package syncengine

import (
	"testing"
	"time"
)

// TestAdaptiveBatchSizeGrows: 20 cycles that each finish in ~100ms (well
// under 0.6*T) must grow the batch size to at least 200.
func TestAdaptiveBatchSizeGrows(t *testing.T) {
	e := &Engine{batchSize: initialBatch, metrics: newMetrics(nil)}
	for i := 0; i < 20; i++ {
		n := uint64(e.batchSize)
		e.adjustBatchSize(n, 100*time.Millisecond)
	}
	if e.batchSize < 200 {
		t.Fatalf("batch size after 20 fast cycles = %d, want >= 200", e.batchSize)
	}
}

// TestAdaptiveBatchSizeShrinks: 20 cycles that each take 5s per block
// (far over 1.5*T for any batch size) must shrink the batch size to at
// most 10.
func TestAdaptiveBatchSizeShrinks(t *testing.T) {
	e := &Engine{batchSize: initialBatch, metrics: newMetrics(nil)}
	for i := 0; i < 20; i++ {
		n := uint64(e.batchSize)
		elapsed := time.Duration(n) * 5 * time.Second
		e.adjustBatchSize(n, elapsed)
	}
	if e.batchSize > 10 {
		t.Fatalf("batch size after 20 slow cycles = %d, want <= 10", e.batchSize)
	}
}
