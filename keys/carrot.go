package keys

import (
	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/xhash"
)

// CarrotKeySet holds the four CARROT secrets and their derived publics:
// prove_spend_key, view_incoming_key, generate_image_key,
// generate_address_secret, plus the account spend pubkey K_s and the
// primary view pubkey K⁰_v.
type CarrotKeySet struct {
	ProveSpendKey        [32]byte // k_ps
	ViewIncomingKey      [32]byte // k_vi
	GenerateImageKey     [32]byte // k_gi
	GenerateAddressSecret [32]byte // s_ga

	AccountSpendPubkey [32]byte // K_s = k_ps·T + k_gi·G
	PrimaryViewPubkey  [32]byte // K⁰_v = k_vi·X25519BasePoint
}

// Domain labels for the CARROT key-derivation transcripts. The three
// scalars are derived as Hn[seed](label) and s_ga as H32[seed](label),
// each under its own label so that no two secrets collide even though
// they all transcript over the same master seed.
const (
	domainProveSpend    = "Carrot prove-spend key"
	domainViewIncoming  = "Carrot view-incoming key"
	domainGenerateImage = "Carrot generate-image key"
	domainGenerateAddr  = "Carrot generate-address secret"
)

// DeriveCarrot derives the CARROT key set from the wallet seed.
func DeriveCarrot(seed [32]byte) CarrotKeySet {
	kps := xhash.Hn(seed[:], domainProveSpend)
	kvi := xhash.Hn(seed[:], domainViewIncoming)
	kgi := xhash.Hn(seed[:], domainGenerateImage)
	sga := xhash.H32(seed[:], domainGenerateAddr)

	// K_s = k_ps·T + k_gi·G
	ks := curve.BaseT().ScalarMult(kps).Add(curve.ScalarMultBase(kgi))

	// K⁰_v is the CARROT incoming-view public key on the X25519 group;
	// it is an X25519 u-coordinate, not an Edwards point.
	kv0 := curve.X25519(kvi, curve.X25519BasePoint)

	return CarrotKeySet{
		ProveSpendKey:         kps,
		ViewIncomingKey:       kvi,
		GenerateImageKey:      kgi,
		GenerateAddressSecret: sga,
		AccountSpendPubkey:    ks.Compress(),
		PrimaryViewPubkey:     kv0,
	}
}
