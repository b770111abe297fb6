// Package scan implements the per-output ownership decision: the legacy
// ed25519-ECDH path and the CARROT X25519-ECDH path, each recovering the
// one-time secret, the hidden amount and blinding mask, and the spend
// key image when an output belongs to the wallet.
package scan

import "github.com/salvium/wallet-core/keys"

// Result is one owned output recovered by a scan. A nil, nil return from
// either scan entry point means "not owned", an internal signal that is
// never surfaced to callers as an error.
type Result struct {
	OneTimePubkey   [32]byte
	OutputIndex     uint32
	KeyImage        [32]byte
	Amount          uint64
	Commitment      [32]byte
	Mask            [32]byte
	SubaddressIndex keys.SubaddressIndex
	IsCarrot        bool
}
