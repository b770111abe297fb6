package syncengine

import (
	"context"
	"fmt"

	"github.com/salvium/wallet-core/rpcclient"
)

// fakeBlock is one entry of a fakeDaemon's chain.
type fakeBlock struct {
	hash [32]byte
}

// fakeDaemon is a minimal in-memory rpcclient.DaemonClient double used to
// drive the sync engine deterministically in tests, without a real
// daemon or the network.
type fakeDaemon struct {
	chain []fakeBlock
}

func hashFor(height uint64, salt byte) [32]byte {
	var h [32]byte
	h[0] = salt
	h[1] = byte(height)
	h[2] = byte(height >> 8)
	return h
}

func newFakeDaemon(n int, salt byte) *fakeDaemon {
	d := &fakeDaemon{}
	for i := 0; i < n; i++ {
		d.chain = append(d.chain, fakeBlock{hash: hashFor(uint64(i), salt)})
	}
	return d
}

func (d *fakeDaemon) GetInfo(ctx context.Context) (rpcclient.Info, error) {
	return rpcclient.Info{Height: uint64(len(d.chain))}, nil
}

func (d *fakeDaemon) GetBlockHeaderByHeight(ctx context.Context, height uint64) (rpcclient.BlockHeader, error) {
	if int(height) >= len(d.chain) {
		return rpcclient.BlockHeader{}, fmt.Errorf("fakeDaemon: height %d out of range", height)
	}
	return rpcclient.BlockHeader{Height: height, Hash: d.chain[height].hash}, nil
}

func (d *fakeDaemon) GetBlockHeadersRange(ctx context.Context, from, to uint64) ([]rpcclient.BlockHeader, error) {
	var out []rpcclient.BlockHeader
	for h := from; h < to; h++ {
		hdr, err := d.GetBlockHeaderByHeight(ctx, h)
		if err != nil {
			return nil, err
		}
		out = append(out, hdr)
	}
	return out, nil
}

func (d *fakeDaemon) GetBlock(ctx context.Context, height uint64) (rpcclient.BlockBody, error) {
	if int(height) >= len(d.chain) {
		return rpcclient.BlockBody{}, fmt.Errorf("fakeDaemon: height %d out of range", height)
	}
	minerHash := hashFor(height, 0xAA)
	return rpcclient.BlockBody{
		Height:      height,
		Hash:        d.chain[height].hash,
		MinerTxHash: minerHash,
	}, nil
}

func (d *fakeDaemon) GetTransactions(ctx context.Context, hashes [][32]byte, decodeAsJSON bool) ([]rpcclient.TxResult, error) {
	out := make([]rpcclient.TxResult, len(hashes))
	for i, h := range hashes {
		out[i] = rpcclient.TxResult{
			TxHash: h,
			AsJSON: []byte(`{"version":2,"unlock_time":0,"type":0,"extra":"",` +
				`"vin":[{"gen":{"height":0}}],"vout":[],` +
				`"rct_signatures":{"type":0,"txnFee":0,"outPk":[],"ecdhInfo":[]},` +
				`"rctsig_prunable":{"signatures":""}}`),
		}
	}
	return out, nil
}

func (d *fakeDaemon) SendRawTransaction(ctx context.Context, txHex []byte) (rpcclient.SendResult, error) {
	return rpcclient.SendResult{Status: "OK"}, nil
}

func (d *fakeDaemon) GetTransactionPool(ctx context.Context) ([]rpcclient.MempoolTx, error) {
	return nil, nil
}

func (d *fakeDaemon) GetOuts(ctx context.Context, refs []rpcclient.OutputRef) ([]rpcclient.DecoyOutput, error) {
	return nil, nil
}

func (d *fakeDaemon) GetOutputDistribution(ctx context.Context, assetType string) ([]uint64, error) {
	return nil, nil
}

// fork replaces the chain's tail from height h onward with newly salted
// hashes, simulating a reorg whose common ancestor is h-1.
func (d *fakeDaemon) fork(h int, salt byte, newTip int) {
	d.chain = d.chain[:h]
	for i := h; i < newTip; i++ {
		d.chain = append(d.chain, fakeBlock{hash: hashFor(uint64(i), salt)})
	}
}
