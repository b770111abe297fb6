// Command walletcli is the CLI entry point for the wallet core: generate,
// address, balance, sync, send, sweep, stake, burn.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/salvium/wallet-core/address"
	"github.com/salvium/wallet-core/feemodel"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/rpcclient"
	"github.com/salvium/wallet-core/scan"
	"github.com/salvium/wallet-core/store"
	"github.com/salvium/wallet-core/syncengine"
	"github.com/salvium/wallet-core/txbuilder"
	"github.com/salvium/wallet-core/txser"
)

// txHex renders signed's prefix bytes followed by its opaque RCT
// signature bytes as the hex payload send_raw_transaction expects.
func txHex(signed txbuilder.SignedTx) []byte {
	raw := append(txser.EncodePrefix(signed.Tx.Prefix), signed.Tx.RCT.Signatures...)
	out := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(out, raw)
	return out
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, args, err := parseGlobalArgs(os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	var runErr error
	switch os.Args[1] {
	case "generate":
		runErr = cmdGenerate(cfg)
	case "address":
		runErr = cmdAddress(cfg)
	case "balance":
		runErr = cmdBalance(cfg)
	case "sync":
		runErr = cmdSync(cfg)
	case "send":
		runErr = cmdSend(cfg, args)
	case "sweep":
		runErr = cmdSweep(cfg, args)
	case "stake":
		runErr = cmdStake(cfg, args)
	case "burn":
		runErr = cmdBurn(cfg, args)
	default:
		fmt.Printf("unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  walletcli generate                       - generate new wallet keys")
	fmt.Println("  walletcli address                        - show wallet address")
	fmt.Println("  walletcli balance                        - query wallet balance")
	fmt.Println("  walletcli sync [-watch]                   - sync with the daemon")
	fmt.Println("  walletcli send <address> <amount>        - send a private transfer")
	fmt.Println("  walletcli sweep <address>                - sweep all unspent funds")
	fmt.Println("  walletcli stake <amount> <lock_blocks>   - create a staking transaction")
	fmt.Println("  walletcli burn <amount>                  - burn an amount")
	fmt.Println()
	fmt.Println("Flags (any command): -wallet -daemon -store -asset -network -config")
	fmt.Println("Flags (sync only):   -watch")
}

// parseGlobalArgs applies an optional -config JSON file, then flags, on
// top of defaultConfig, and returns the verb's remaining positional args.
func parseGlobalArgs(verb string, rest []string) (config, []string, error) {
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	configPath := fs.String("config", "", "optional JSON config file")
	cfg := defaultConfig()
	registerFlags(fs, &cfg)
	if err := fs.Parse(rest); err != nil {
		return cfg, nil, err
	}
	if *configPath != "" {
		loaded, err := loadConfigFile(defaultConfig(), *configPath)
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
		// Flags override the config file: re-parse onto the loaded cfg.
		fs2 := flag.NewFlagSet(verb, flag.ExitOnError)
		registerFlags(fs2, &cfg)
		_ = fs2.Parse(rest)
	}
	return cfg, fs.Args(), nil
}

func newLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func cmdGenerate(cfg config) error {
	wk, err := keys.GenerateWalletKeys()
	if err != nil {
		return fmt.Errorf("generate wallet keys: %w", err)
	}
	if err := saveWalletFile(cfg.WalletFile, wk.Seed); err != nil {
		return fmt.Errorf("save wallet file: %w", err)
	}

	legacyTag, carrotTag, err := networkTags(cfg.Network)
	if err != nil {
		return err
	}

	fmt.Println("Wallet generated successfully!")
	fmt.Println("Saved to:", cfg.WalletFile)
	fmt.Println()
	fmt.Println("Legacy address:", address.Encode(legacyAddress(wk, legacyTag)))
	fmt.Println("CARROT address:", address.Encode(carrotAddress(wk, carrotTag)))
	fmt.Println()
	fmt.Println("Seed backup (base58, keep offline):", keys.SeedDisplayString(wk.Seed))
	fmt.Println("Keep your wallet file secure -- it is the only copy of your seed.")
	return nil
}

func cmdAddress(cfg config) error {
	wk, err := loadWalletKeys(cfg.WalletFile)
	if err != nil {
		return err
	}
	legacyTag, carrotTag, err := networkTags(cfg.Network)
	if err != nil {
		return err
	}
	fmt.Println("Legacy address:", address.Encode(legacyAddress(wk, legacyTag)))
	fmt.Println("CARROT address:", address.Encode(carrotAddress(wk, carrotTag)))
	return nil
}

// openStore opens the configured backend: BadgerDB when -store names a
// path, in-memory otherwise.
func openStore(cfg config) (store.Store, error) {
	if cfg.StorePath == "" {
		return store.NewMemory(), nil
	}
	return store.OpenBadger(cfg.StorePath)
}

func newWalletScanner(wk keys.WalletKeys) *scan.Wallet {
	return &scan.Wallet{
		LegacyTable: scan.NewLegacyTable(wk.Legacy),
		CarrotTable: scan.NewCarrotTable(wk.Carrot),
		ViewSecret:  wk.Legacy.ViewSecret,
		CarrotKeys:  wk.Carrot,
	}
}

func cmdBalance(cfg config) error {
	wk, err := loadWalletKeys(cfg.WalletFile)
	if err != nil {
		return err
	}
	_ = wk // balance reads purely from the store; keys only needed to scan during sync.

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	bal, err := st.Balance(context.Background(), cfg.AssetType)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	fmt.Printf("Balance (%s): %s\n", cfg.AssetType, humanize.Comma(int64(bal)))
	return nil
}

func cmdSync(cfg config) error {
	wk, err := loadWalletKeys(cfg.WalletFile)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	log := newLogger()
	defer log.Sync() //nolint:errcheck
	daemon := rpcclient.NewHTTP(cfg.DaemonURL, log)
	wallet := newWalletScanner(wk)
	engine := syncengine.New(daemon, st, wallet, log, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for ev := range engine.Events() {
			if ev.Kind == "reorg" {
				fmt.Printf("reorg detected: rolled back to height %d (%d blocks)\n", ev.CommonHeight, ev.BlocksRolledBack)
			} else {
				fmt.Printf("synced to height %d\n", ev.Height)
			}
		}
	}()

	if err := engine.Start(ctx, nil); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("sync complete, state:", engine.State())

	if !cfg.Watch {
		return nil
	}
	return watchSync(ctx, engine, cfg, log)
}

// watchSync keeps engine caught up with the chain tip after the initial
// catch-up, waking on the daemon's websocket new-block stream instead of
// polling blind. It falls back to a slow timer if the websocket never
// connects, since Watcher degrades silently on connection failure.
func watchSync(ctx context.Context, engine *syncengine.Engine, cfg config, log *zap.SugaredLogger) error {
	watcher := rpcclient.NewWatcher(websocketURL(cfg.DaemonURL), log)
	go watcher.Run(ctx)

	fallback := time.NewTicker(30 * time.Second)
	defer fallback.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case tip := <-watcher.Tips():
			log.Infow("new tip notification", "height", tip.Height)
		case <-fallback.C:
		}
		if err := engine.Start(ctx, nil); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	}
}

// websocketURL rewrites an http(s) daemon base URL into the ws(s)
// new-block notification endpoint.
func websocketURL(daemonURL string) string {
	u := daemonURL
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return strings.TrimRight(u, "/") + "/ws/new_block"
}

func cmdSend(cfg config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: send <address> <amount>")
	}
	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	dest, err := address.Decode(args[0])
	if err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := defaultOptions(context.Background(), builder.Daemon, cfg)
	if err != nil {
		return err
	}

	signed, err := builder.BuildTransfer(context.Background(), []txbuilder.Destination{{Addr: dest, Amount: amount}}, opts)
	if err != nil {
		return fmt.Errorf("build transfer: %w", err)
	}
	return broadcastAndReport(builder, signed)
}

func cmdSweep(cfg config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sweep <address>")
	}
	dest, err := address.Decode(args[0])
	if err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := defaultOptions(context.Background(), builder.Daemon, cfg)
	if err != nil {
		return err
	}
	signed, err := builder.BuildSweep(context.Background(), dest, opts)
	if err != nil {
		return fmt.Errorf("build sweep: %w", err)
	}
	return broadcastAndReport(builder, signed)
}

func cmdStake(cfg config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: stake <amount> <lock_blocks>")
	}
	amount, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	lock, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid lock period: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := defaultOptions(context.Background(), builder.Daemon, cfg)
	if err != nil {
		return err
	}
	signed, err := builder.BuildStake(context.Background(), amount, lock, opts)
	if err != nil {
		return fmt.Errorf("build stake: %w", err)
	}
	return broadcastAndReport(builder, signed)
}

func cmdBurn(cfg config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: burn <amount>")
	}
	amount, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := defaultOptions(context.Background(), builder.Daemon, cfg)
	if err != nil {
		return err
	}
	signed, err := builder.BuildBurn(context.Background(), amount, opts)
	if err != nil {
		return fmt.Errorf("build burn: %w", err)
	}
	return broadcastAndReport(builder, signed)
}

// newBuilder wires a fresh txbuilder.Builder against the configured
// daemon, store, and wallet keys, returning a cleanup func that closes
// the store.
func newBuilder(cfg config) (*txbuilder.Builder, func(), error) {
	wk, err := loadWalletKeys(cfg.WalletFile)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	legacyTag, _, err := networkTags(cfg.Network)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	log := newLogger()
	daemon := rpcclient.NewHTTP(cfg.DaemonURL, log)
	wallet := newWalletScanner(wk)
	changeAddr := legacyAddress(wk, legacyTag)
	builder := txbuilder.New(daemon, st, wallet, changeAddr, log)

	cleanup := func() {
		log.Sync() //nolint:errcheck
		st.Close()
	}
	return builder, cleanup, nil
}

// defaultOptions fills txbuilder.Options from the live daemon tip. Block
// weight medians aren't part of this module's daemon surface, so the CLI
// uses feemodel.MinMedian for
// both short and long medians -- the same floor the fee formula itself
// clamps to when a daemon reports congestion-free blocks.
func defaultOptions(ctx context.Context, daemon rpcclient.DaemonClient, cfg config) (txbuilder.Options, error) {
	info, err := daemon.GetInfo(ctx)
	if err != nil {
		return txbuilder.Options{}, fmt.Errorf("get_info: %w", err)
	}
	return txbuilder.Options{
		AssetType:    cfg.AssetType,
		Priority:     feemodel.PriorityNormal,
		Strategy:     txbuilder.LargestFirst,
		SpendableAge: 10,
		ChainHeight:  info.Height,
		ShortMedian:  feemodel.MinMedian,
		LongMedian:   feemodel.MinMedian,
	}, nil
}

func broadcastAndReport(b *txbuilder.Builder, signed *txbuilder.SignedTx) error {
	fmt.Println("transaction built:")
	fmt.Printf("  id:   %s\n", signed.ID)
	fmt.Printf("  hash: %s\n", hex.EncodeToString(signed.TxHash[:]))
	fmt.Printf("  fee:  %s\n", humanize.Comma(int64(signed.Fee)))

	res, err := b.Daemon.SendRawTransaction(context.Background(), txHex(*signed))
	if err != nil {
		fmt.Println("broadcast failed (transaction was not mutated in the store):", err)
		return nil
	}
	fmt.Println("broadcast status:", res.Status)
	if res.Reason != "" {
		fmt.Println("reason:", res.Reason)
	}
	return nil
}
