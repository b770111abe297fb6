// Package walletcore (module root, import path
// "github.com/salvium/wallet-core") is the importable façade tying every
// subsystem together: keys, address derivation, the UTXO store, the
// output scanner, the sync engine, and the transaction builder. Generate
// keys, open a store, sync, build a transaction -- as a library entry
// point rather than only a CLI, so a host application can embed a wallet
// without shelling out to a binary.
package walletcore

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/salvium/wallet-core/address"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/rpcclient"
	"github.com/salvium/wallet-core/scan"
	"github.com/salvium/wallet-core/store"
	"github.com/salvium/wallet-core/syncengine"
	"github.com/salvium/wallet-core/txbuilder"
)

// Wallet wires one seed's key material against one store, one daemon
// connection, and the scan/sync/build subsystems those two drive. All
// fields are safe to use concurrently except where the underlying
// subsystem documents otherwise (syncengine.Engine: one Start at a time;
// store.Store implementations: see their own docs).
type Wallet struct {
	Keys   keys.WalletKeys
	Daemon rpcclient.DaemonClient
	Store  store.Store

	scanner *scan.Wallet
	engine  *syncengine.Engine
	builder *txbuilder.Builder
}

// Config configures Open.
type Config struct {
	Seed       [32]byte
	DaemonURL  string
	Store      store.Store // required; callers choose store.NewMemory() or store.OpenBadger(path)
	Log        *zap.SugaredLogger
	Registerer prometheus.Registerer // optional; nil disables metrics registration
	Rand       io.Reader             // optional; nil means crypto/rand.Reader (see txbuilder.Builder.Rand)
}

// Open derives a wallet's key hierarchy from cfg.Seed and wires it
// against cfg.Store and an HTTP daemon client at cfg.DaemonURL, ready to
// Sync and Build transactions. The caller owns cfg.Store's lifetime and
// must Close it when done with the Wallet.
func Open(cfg Config) (*Wallet, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("walletcore: Config.Store is required")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	wk := keys.NewWalletKeys(cfg.Seed)
	daemon := rpcclient.NewHTTP(cfg.DaemonURL, log)
	scanner := &scan.Wallet{
		LegacyTable: scan.NewLegacyTable(wk.Legacy),
		CarrotTable: scan.NewCarrotTable(wk.Carrot),
		ViewSecret:  wk.Legacy.ViewSecret,
		CarrotKeys:  wk.Carrot,
	}
	engine := syncengine.New(daemon, cfg.Store, scanner, log, cfg.Registerer)
	changeAddr := address.Address{Tag: address.TagMainnetLegacy, SpendPub: wk.Legacy.SpendPublic, ViewPub: wk.Legacy.ViewPublic}
	builder := txbuilder.New(daemon, cfg.Store, scanner, changeAddr, log)
	builder.Rand = cfg.Rand

	return &Wallet{
		Keys:    wk,
		Daemon:  daemon,
		Store:   cfg.Store,
		scanner: scanner,
		engine:  engine,
		builder: builder,
	}, nil
}

// LegacyAddress returns the main legacy address under tag.
func (w *Wallet) LegacyAddress(tag address.NetworkTag) address.Address {
	return address.Address{Tag: tag, SpendPub: w.Keys.Legacy.SpendPublic, ViewPub: w.Keys.Legacy.ViewPublic}
}

// CarrotAddress returns the main CARROT address under tag.
func (w *Wallet) CarrotAddress(tag address.NetworkTag) address.Address {
	return address.Address{Tag: tag, SpendPub: w.Keys.Carrot.AccountSpendPubkey, ViewPub: w.Keys.Carrot.PrimaryViewPubkey}
}

// Sync catches the wallet's store up to the daemon's current tip, from
// its persisted sync height. Events observed during the sync
// are available via Events for the duration of the call.
func (w *Wallet) Sync(ctx context.Context) error {
	return w.engine.Start(ctx, nil)
}

// Events exposes the sync engine's progress/reorg notification stream.
func (w *Wallet) Events() <-chan syncengine.Event {
	return w.engine.Events()
}

// State reports the sync engine's current state machine value.
func (w *Wallet) State() syncengine.State {
	return w.engine.State()
}

// Balance sums unspent amounts of assetType in the wallet's store.
func (w *Wallet) Balance(ctx context.Context, assetType string) (uint64, error) {
	return w.Store.Balance(ctx, assetType)
}

// SetFrozen excludes or re-admits the UTXO owning keyImage from builder
// selection without spending it.
func (w *Wallet) SetFrozen(ctx context.Context, keyImage [32]byte, frozen bool) error {
	return w.Store.SetFrozen(ctx, keyImage, frozen)
}

// Send builds and signs a transfer to the given destinations, without
// broadcasting it; the caller is responsible for submission via Daemon.
func (w *Wallet) Send(ctx context.Context, destinations []txbuilder.Destination, opts txbuilder.Options) (*txbuilder.SignedTx, error) {
	return w.builder.BuildTransfer(ctx, destinations, opts)
}

// Sweep builds and signs a transaction spending every spendable output to
// a single destination.
func (w *Wallet) Sweep(ctx context.Context, dest address.Address, opts txbuilder.Options) (*txbuilder.SignedTx, error) {
	return w.builder.BuildSweep(ctx, dest, opts)
}

// Stake builds and signs a staking transaction locking amount for
// lockPeriod blocks.
func (w *Wallet) Stake(ctx context.Context, amount uint64, lockPeriod uint64, opts txbuilder.Options) (*txbuilder.SignedTx, error) {
	return w.builder.BuildStake(ctx, amount, lockPeriod, opts)
}

// Burn builds and signs a burn transaction removing amount from supply.
func (w *Wallet) Burn(ctx context.Context, amount uint64, opts txbuilder.Options) (*txbuilder.SignedTx, error) {
	return w.builder.BuildBurn(ctx, amount, opts)
}
