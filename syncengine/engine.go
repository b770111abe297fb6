// Package syncengine implements the adaptive block-batch synchronization
// state machine: {Idle, Syncing, Complete, Error} states, reorg
// walk-back, adaptive batch sizing, and fork-aware transaction dispatch
// into the scanner.
package syncengine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/rpcclient"
	"github.com/salvium/wallet-core/scan"
	"github.com/salvium/wallet-core/store"
)

// State is the sync engine's state machine value.
type State int

const (
	Idle State = iota
	Syncing
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Syncing:
		return "syncing"
	case Complete:
		return "complete"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// targetCycleMS is the target cycle time T of the adaptive batch formula.
const targetCycleMS = 2000

const (
	initialBatch = 100
	minBatch     = 5
	maxBatch     = 400
)

// Event is emitted by the engine for informational conditions that are
// never propagated as failures (a detected reorg is an event, not an
// error).
type Event struct {
	Kind             string // "reorg" | "progress"
	CommonHeight     uint64
	OldTip           uint64
	BlocksRolledBack uint64
	Height           uint64
}

// Engine drives one wallet's synchronization against one daemon and one
// store. Exactly one Start call may be in progress at a
// time; Engine enforces that with an internal mutex rather than relying
// on callers to serialize themselves.
type Engine struct {
	daemon rpcclient.DaemonClient
	db     store.Store
	wallet *scan.Wallet
	log    *zap.SugaredLogger

	mu            sync.Mutex
	state         atomic.Int32
	stopRequested atomic.Bool
	lastErr       error
	batchSize     int

	events  chan Event
	metrics *metrics
}

// New constructs an Engine. log and registerer may be nil (a no-op
// logger and a fresh, unregistered metrics set are used respectively);
// the engine keeps no ambient or process-global state.
func New(daemon rpcclient.DaemonClient, db store.Store, wallet *scan.Wallet, log *zap.SugaredLogger, registerer prometheus.Registerer) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Engine{
		daemon:    daemon,
		db:        db,
		wallet:    wallet,
		log:       log,
		batchSize: initialBatch,
		events:    make(chan Event, 64),
		metrics:   newMetrics(registerer),
	}
	e.state.Store(int32(Idle))
	return e
}

// State returns the engine's current state machine value.
func (e *Engine) State() State { return State(e.state.Load()) }

// LastError returns the cause surfaced when State() == Error.
func (e *Engine) LastError() error { return e.lastErr }

// Events returns the channel Reorg and progress notifications are
// published on. Never blocks the sync loop: the channel is buffered and
// publishes are non-blocking best-effort.
func (e *Engine) Events() <-chan Event { return e.events }

// RequestStop sets stop_requested; the loop exits after the in-flight
// block's batch has been committed.
func (e *Engine) RequestStop() { e.stopRequested.Store(true) }

func (e *Engine) publish(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// Start resolves the sync start height (from, if non-nil, else the
// store's persisted sync height), performs reorg detection/rollback if
// needed, then loops fetching and ingesting blocks until caught up with
// the daemon's tip or stopped.
func (e *Engine) Start(ctx context.Context, from *uint64) error {
	if !e.mu.TryLock() {
		return fmt.Errorf("syncengine: a sync is already in progress")
	}
	defer e.mu.Unlock()

	e.stopRequested.Store(false)
	e.state.Store(int32(Syncing))

	if err := e.run(ctx, from); err != nil {
		e.lastErr = err
		e.state.Store(int32(Error))
		e.log.Errorw("sync failed", "error", err)
		return err
	}

	if e.stopRequested.Load() {
		e.state.Store(int32(Idle))
	} else {
		e.state.Store(int32(Complete))
	}
	return nil
}

func (e *Engine) run(ctx context.Context, from *uint64) error {
	current, err := e.resolveStart(ctx, from)
	if err != nil {
		return err
	}

	if current > 0 {
		common, err := e.detectReorg(ctx, current)
		if err != nil {
			return err
		}
		if common != current-1 {
			if err := e.rollback(ctx, common); err != nil {
				return err
			}
			current = common + 1
		}
	}

	info, err := e.daemon.GetInfo(ctx)
	if err != nil {
		return fmt.Errorf("syncengine: get_info: %w", err)
	}
	target := info.Height

	for current < target && !e.stopRequested.Load() {
		start := time.Now()
		end := current + uint64(e.batchSize)
		if end > target {
			end = target
		}

		n, err := e.ingestRange(ctx, current, end)
		if err != nil {
			return err
		}
		current += n
		e.metrics.syncHeight.Set(float64(current))
		elapsed := time.Since(start)
		e.adjustBatchSize(n, elapsed)
		e.publish(Event{Kind: "progress", Height: current})

		if current >= target {
			info, err := e.daemon.GetInfo(ctx)
			if err != nil {
				return fmt.Errorf("syncengine: refresh get_info: %w", err)
			}
			target = info.Height
		}
	}
	return nil
}

func (e *Engine) resolveStart(ctx context.Context, from *uint64) (uint64, error) {
	if from != nil {
		return *from, nil
	}
	return e.db.GetSyncHeight(ctx)
}

// adjustBatchSize retunes the fetch batch: grow 1.2x
// (ceiling, capped at 400) when a batch of n blocks finished comfortably
// under target, shrink 0.8x (ceiling, floored at 5) when it ran well
// over; otherwise leave batchSize unchanged.
func (e *Engine) adjustBatchSize(n uint64, elapsed time.Duration) {
	if n == 0 {
		return
	}
	ms := float64(elapsed.Milliseconds())
	switch {
	case ms < 0.6*targetCycleMS:
		grown := int(ceilF(float64(e.batchSize) * 1.2))
		if grown > maxBatch {
			grown = maxBatch
		}
		e.batchSize = grown
	case ms > 1.5*targetCycleMS:
		shrunk := int(ceilF(float64(e.batchSize) * 0.8))
		if shrunk < minBatch {
			shrunk = minBatch
		}
		e.batchSize = shrunk
	}
	e.metrics.batchSize.Set(float64(e.batchSize))
}

func ceilF(v float64) float64 {
	i := int64(v)
	if float64(i) < v {
		i++
	}
	return float64(i)
}

// ingestRange fetches headers and bodies for [from, to), dispatches each
// block's transactions through the scanner, and commits each block's
// batch atomically, returning the number of blocks successfully
// ingested. The GetBlock fetches within the range run concurrently via
// errgroup; no separate header fetch is made.
func (e *Engine) ingestRange(ctx context.Context, from, to uint64) (uint64, error) {
	bodies := make([]rpcclient.BlockBody, to-from)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for h := from; h < to; h++ {
		h := h
		g.Go(func() error {
			body, err := e.daemon.GetBlock(gctx, h)
			if err != nil {
				return fmt.Errorf("syncengine: get_block(%d): %w", h, err)
			}
			bodies[h-from] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var ingested uint64
	for i, body := range bodies {
		height := from + uint64(i)
		if err := e.ingestBlock(ctx, height, body); err != nil {
			return ingested, err
		}
		ingested++
		if e.stopRequested.Load() {
			break
		}
	}
	return ingested, nil
}

// ingestBlock parses and scans one block's miner_tx, protocol_tx (if
// present), and regular transactions, dispatching each to the correct
// scanner variant by output target tag rather than block height, then
// commits the whole block as one atomic store.Batch.
func (e *Engine) ingestBlock(ctx context.Context, height uint64, body rpcclient.BlockBody) error {
	if existing, err := e.db.GetBlockHash(ctx, height); err == nil && existing != body.Hash {
		return fmt.Errorf("syncengine: fatal: block %d hash changed from %x to %x without a detected reorg", height, existing, body.Hash)
	}

	fetch := append([][32]byte{body.MinerTxHash}, body.TxHashes...)
	if body.ProtocolTxHash != nil {
		fetch = append(fetch, *body.ProtocolTxHash)
	}
	txResults, err := e.daemon.GetTransactions(ctx, fetch, true)
	if err != nil {
		return fmt.Errorf("syncengine: get_transactions(block %d): %w", height, err)
	}

	batch := store.Batch{Height: height, BlockHash: body.Hash, Spends: make(map[[32]byte][32]byte)}

	for _, tr := range txResults {
		tx, err := ParseTransactionJSON(tr.AsJSON)
		if err != nil {
			e.log.Warnw("skipping unparseable transaction (not retried)", "height", height, "tx", tr.TxHash)
			continue
		}

		for _, in := range tx.Prefix.Inputs {
			if in.Kind == enote.InputKey && tx.Prefix.Type != enote.TxProtocol {
				// protocol_tx never spends wallet outputs.
				batch.Spends[in.KeyImage] = tr.TxHash
			}
		}

		results := e.wallet.ScanTx(tx, height)
		for _, r := range results {
			batch.NewOutputs = append(batch.NewOutputs, enote.UTXORecord{
				KeyImage:        r.KeyImage,
				OneTimePubkey:   r.OneTimePubkey,
				OutputIndex:     r.OutputIndex,
				TxHash:          tr.TxHash,
				BlockHeight:     height,
				Amount:          r.Amount,
				Commitment:      r.Commitment,
				Mask:            r.Mask,
				SubaddressIndex: r.SubaddressIndex,
				UnlockTime:      tx.Prefix.UnlockTime,
				IsCarrot:        r.IsCarrot,
			})
		}
		if len(results) > 0 {
			batch.NewTxs = append(batch.NewTxs, tx)
		}
	}

	if err := e.db.CommitBatch(ctx, batch); err != nil {
		return fmt.Errorf("syncengine: commit batch(height %d): %w", height, err)
	}
	return nil
}
