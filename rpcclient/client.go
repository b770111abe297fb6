// Package rpcclient is the daemon RPC collaborator: the method surface a
// sync engine and transaction builder consume
// (get_info, get_block_header_by_height, get_block_headers_range,
// get_block, get_transactions, send_raw_transaction,
// get_transaction_pool, get_outs, and a decoy distribution query) plus a
// retrying HTTP/JSON implementation.
package rpcclient

import "context"

// BlockHeader is the subset of get_block_header_by_height's response the
// core needs.
type BlockHeader struct {
	Hash           [32]byte
	Height         uint64
	Timestamp      int64
	MajorVersion   uint8
	Reward         uint64
}

// Info is get_info's response.
type Info struct {
	Height        uint64
	TopBlockHash  [32]byte
}

// BlockBody is get_block's response: the raw JSON block body plus the
// coinbase and protocol-tx hashes the caller needs to fetch their bodies
// via get_transactions.
type BlockBody struct {
	Height         uint64
	Hash           [32]byte
	JSON           []byte
	MinerTxHash    [32]byte
	ProtocolTxHash *[32]byte
	TxHashes       [][32]byte
}

// TxResult is one entry of get_transactions's response: either
// a hex-encoded blob or a pre-decoded JSON body, depending on what the
// daemon returned.
type TxResult struct {
	TxHash [32]byte
	AsHex  []byte
	AsJSON []byte
}

// SendResult is send_raw_transaction's response.
type SendResult struct {
	Status string
	Reason string
}

// OutputRef identifies one on-chain output by (amount, global index),
// the get_outs request shape.
type OutputRef struct {
	Amount uint64
	Index  uint64
}

// DecoyOutput is one entry of get_outs's response: a candidate ring
// member's public key and commitment at a known global index.
type DecoyOutput struct {
	GlobalIndex uint64
	Key         [32]byte
	Commitment  [32]byte
}

// MempoolTx is one entry of get_transaction_pool's response: the core
// surfaces these through scan.ScanMempoolTx but never writes them into
// the confirmed store.
type MempoolTx struct {
	TxHash [32]byte
	AsJSON []byte
}

// DaemonClient is the method surface the core needs from a daemon.
// Both the HTTP implementation and any test double satisfy
// this interface; syncengine and txbuilder depend on it, never on a
// concrete transport.
type DaemonClient interface {
	GetInfo(ctx context.Context) (Info, error)
	GetBlockHeaderByHeight(ctx context.Context, height uint64) (BlockHeader, error)
	GetBlockHeadersRange(ctx context.Context, from, to uint64) ([]BlockHeader, error)
	GetBlock(ctx context.Context, height uint64) (BlockBody, error)
	GetTransactions(ctx context.Context, hashes [][32]byte, decodeAsJSON bool) ([]TxResult, error)
	SendRawTransaction(ctx context.Context, txHex []byte) (SendResult, error)
	GetTransactionPool(ctx context.Context) ([]MempoolTx, error)
	GetOuts(ctx context.Context, refs []OutputRef) ([]DecoyOutput, error)
	// GetOutputDistribution returns, for assetType, the cumulative count
	// of outputs up to each recent height -- the daemon's recommended
	// decoy distribution.
	GetOutputDistribution(ctx context.Context, assetType string) ([]uint64, error)
}
