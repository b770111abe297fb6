package main

import (
	"encoding/json"
	"flag"
	"os"
)

// config holds the settings every verb needs to talk to a daemon and a
// wallet file. Flags override values loaded from the optional JSON
// config file.
type config struct {
	WalletFile string `json:"wallet_file"`
	DaemonURL  string `json:"daemon_url"`
	StorePath  string `json:"store_path"` // empty means in-memory store
	AssetType  string `json:"asset_type"`
	Network    string `json:"network"` // "mainnet" | "testnet" | "stagenet"
	Watch      bool   `json:"watch"`   // sync continuously, woken by new-block notifications
}

func defaultConfig() config {
	return config{
		WalletFile: "wallet.json",
		DaemonURL:  "http://127.0.0.1:19091",
		StorePath:  "",
		AssetType:  "SAL",
		Network:    "mainnet",
		Watch:      false,
	}
}

// loadConfigFile merges path's JSON contents (if it exists) into cfg.
func loadConfigFile(cfg config, path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// registerFlags binds cfg's fields onto fs so flags always win over any
// config file, matching the usual CLI precedence (file < flags).
func registerFlags(fs *flag.FlagSet, cfg *config) {
	fs.StringVar(&cfg.WalletFile, "wallet", cfg.WalletFile, "path to wallet key file")
	fs.StringVar(&cfg.DaemonURL, "daemon", cfg.DaemonURL, "daemon JSON-RPC base URL")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "on-disk store path (empty = in-memory)")
	fs.StringVar(&cfg.AssetType, "asset", cfg.AssetType, "asset type to operate on")
	fs.StringVar(&cfg.Network, "network", cfg.Network, "mainnet | testnet | stagenet")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "sync (woken by daemon new-block notifications) until interrupted")
}
