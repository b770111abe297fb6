package rpcclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// HTTP is the JSON-RPC DaemonClient implementation. It wraps
// retryablehttp.Client so transient daemon/network failures are retried
// with exponential backoff before surfacing as
// rpcclient.ErrDaemonUnavailable.
type HTTP struct {
	baseURL string
	client  *retryablehttp.Client
	log     *zap.SugaredLogger
}

// NewHTTP constructs an HTTP daemon client against baseURL (e.g.
// "http://127.0.0.1:19091"). log may be nil, in which case a no-op
// logger is used.
func NewHTTP(baseURL string, log *zap.SugaredLogger) *HTTP {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 4
	rc.Logger = nil
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTTP{baseURL: baseURL, client: rc, log: log}
}

// ErrDaemonUnavailable wraps a transport-layer failure.
type ErrDaemonUnavailable struct{ Cause error }

func (e *ErrDaemonUnavailable) Error() string { return fmt.Sprintf("rpcclient: daemon unavailable: %v", e.Cause) }
func (e *ErrDaemonUnavailable) Unwrap() error  { return e.Cause }

// ErrDaemonRejected wraps a well-formed daemon error response.
type ErrDaemonRejected struct{ Reason string }

func (e *ErrDaemonRejected) Error() string { return fmt.Sprintf("rpcclient: daemon rejected request: %s", e.Reason) }

func (h *HTTP) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      "0",
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("rpcclient: marshal %s params: %w", method, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/json_rpc", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpcclient: build request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warnw("daemon call failed", "method", method, "error", err)
		return &ErrDaemonUnavailable{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ErrDaemonUnavailable{Cause: err}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("rpcclient: decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return &ErrDaemonRejected{Reason: envelope.Error.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

func (h *HTTP) GetInfo(ctx context.Context) (Info, error) {
	var resp struct {
		Height       uint64 `json:"height"`
		TopBlockHash string `json:"top_block_hash"`
	}
	if err := h.call(ctx, "get_info", nil, &resp); err != nil {
		return Info{}, err
	}
	var info Info
	info.Height = resp.Height
	copyHexHash(&info.TopBlockHash, resp.TopBlockHash)
	return info, nil
}

func (h *HTTP) GetBlockHeaderByHeight(ctx context.Context, height uint64) (BlockHeader, error) {
	var resp struct {
		BlockHeader struct {
			Hash         string `json:"hash"`
			Height       uint64 `json:"height"`
			Timestamp    int64  `json:"timestamp"`
			MajorVersion uint8  `json:"major_version"`
			Reward       uint64 `json:"reward"`
		} `json:"block_header"`
	}
	if err := h.call(ctx, "get_block_header_by_height", map[string]any{"height": height}, &resp); err != nil {
		return BlockHeader{}, err
	}
	var hdr BlockHeader
	hdr.Height = resp.BlockHeader.Height
	hdr.Timestamp = resp.BlockHeader.Timestamp
	hdr.MajorVersion = resp.BlockHeader.MajorVersion
	hdr.Reward = resp.BlockHeader.Reward
	copyHexHash(&hdr.Hash, resp.BlockHeader.Hash)
	return hdr, nil
}

func (h *HTTP) GetBlockHeadersRange(ctx context.Context, from, to uint64) ([]BlockHeader, error) {
	var resp struct {
		Headers []struct {
			Hash         string `json:"hash"`
			Height       uint64 `json:"height"`
			Timestamp    int64  `json:"timestamp"`
			MajorVersion uint8  `json:"major_version"`
			Reward       uint64 `json:"reward"`
		} `json:"headers"`
	}
	if err := h.call(ctx, "get_block_headers_range", map[string]any{"start_height": from, "end_height": to}, &resp); err != nil {
		return nil, err
	}
	out := make([]BlockHeader, len(resp.Headers))
	for i, hh := range resp.Headers {
		out[i].Height = hh.Height
		out[i].Timestamp = hh.Timestamp
		out[i].MajorVersion = hh.MajorVersion
		out[i].Reward = hh.Reward
		copyHexHash(&out[i].Hash, hh.Hash)
	}
	return out, nil
}

func (h *HTTP) GetBlock(ctx context.Context, height uint64) (BlockBody, error) {
	var resp struct {
		Blob           string   `json:"blob"`
		JSON           string   `json:"json"`
		MinerTxHash    string   `json:"miner_tx_hash"`
		ProtocolTxHash string   `json:"protocol_tx_hash"`
		TxHashes       []string `json:"tx_hashes"`
		BlockHeader    struct {
			Hash string `json:"hash"`
		} `json:"block_header"`
	}
	if err := h.call(ctx, "get_block", map[string]any{"height": height}, &resp); err != nil {
		return BlockBody{}, err
	}
	var body BlockBody
	body.Height = height
	body.JSON = []byte(resp.JSON)
	copyHexHash(&body.Hash, resp.BlockHeader.Hash)
	copyHexHash(&body.MinerTxHash, resp.MinerTxHash)
	if resp.ProtocolTxHash != "" {
		var h [32]byte
		copyHexHash(&h, resp.ProtocolTxHash)
		body.ProtocolTxHash = &h
	}
	body.TxHashes = make([][32]byte, len(resp.TxHashes))
	for i, s := range resp.TxHashes {
		copyHexHash(&body.TxHashes[i], s)
	}
	return body, nil
}

func (h *HTTP) GetTransactions(ctx context.Context, hashes [][32]byte, decodeAsJSON bool) ([]TxResult, error) {
	hexHashes := make([]string, len(hashes))
	for i, hh := range hashes {
		hexHashes[i] = hex.EncodeToString(hh[:])
	}
	var resp struct {
		Txs []struct {
			TxHash string `json:"tx_hash"`
			AsHex  string `json:"as_hex"`
			AsJSON string `json:"as_json"`
		} `json:"txs"`
	}
	params := map[string]any{"txs_hashes": hexHashes, "decode_as_json": decodeAsJSON}
	if err := h.call(ctx, "get_transactions", params, &resp); err != nil {
		return nil, err
	}
	out := make([]TxResult, len(resp.Txs))
	for i, t := range resp.Txs {
		copyHexHash(&out[i].TxHash, t.TxHash)
		out[i].AsHex, _ = hex.DecodeString(t.AsHex)
		out[i].AsJSON = []byte(t.AsJSON)
	}
	return out, nil
}

func (h *HTTP) SendRawTransaction(ctx context.Context, txHex []byte) (SendResult, error) {
	var resp struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := h.call(ctx, "send_raw_transaction", map[string]any{"tx_as_hex": string(txHex)}, &resp); err != nil {
		return SendResult{}, err
	}
	return SendResult{Status: resp.Status, Reason: resp.Reason}, nil
}

func (h *HTTP) GetTransactionPool(ctx context.Context) ([]MempoolTx, error) {
	var resp struct {
		Transactions []struct {
			IDHash string `json:"id_hash"`
			TxJSON string `json:"tx_json"`
		} `json:"transactions"`
	}
	if err := h.call(ctx, "get_transaction_pool", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]MempoolTx, len(resp.Transactions))
	for i, t := range resp.Transactions {
		copyHexHash(&out[i].TxHash, t.IDHash)
		out[i].AsJSON = []byte(t.TxJSON)
	}
	return out, nil
}

func (h *HTTP) GetOuts(ctx context.Context, refs []OutputRef) ([]DecoyOutput, error) {
	reqOuts := make([]map[string]any, len(refs))
	for i, r := range refs {
		reqOuts[i] = map[string]any{"amount": r.Amount, "index": r.Index}
	}
	var resp struct {
		Outs []struct {
			Key        string `json:"key"`
			Mask       string `json:"mask"`
			GlobalIdx  uint64 `json:"global_index"`
		} `json:"outs"`
	}
	if err := h.call(ctx, "get_outs", map[string]any{"outputs": reqOuts}, &resp); err != nil {
		return nil, err
	}
	out := make([]DecoyOutput, len(resp.Outs))
	for i, o := range resp.Outs {
		out[i].GlobalIndex = o.GlobalIdx
		copyHexHash(&out[i].Key, o.Key)
		copyHexHash(&out[i].Commitment, o.Mask)
	}
	return out, nil
}

func (h *HTTP) GetOutputDistribution(ctx context.Context, assetType string) ([]uint64, error) {
	var resp struct {
		Distributions []struct {
			Distribution []uint64 `json:"distribution"`
		} `json:"distributions"`
	}
	if err := h.call(ctx, "get_output_distribution", map[string]any{"asset_type": assetType}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Distributions) == 0 {
		return nil, nil
	}
	return resp.Distributions[0].Distribution, nil
}

func copyHexHash(dst *[32]byte, s string) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return
	}
	copy(dst[:], b)
}

// pollInterval is a get_info polling period. Watcher does not poll: while
// no websocket notification arrives it publishes nothing.
const pollInterval = 15 * time.Second
