// Package txbuilder implements build_transfer and its sweep/burn/stake
// variants: UTXO selection, daemon-backed decoy selection,
// per-input secret re-derivation, forward destination construction, fee
// convergence, and final assembly handed off to the opaque ring-signing
// and range-proving subroutines.
package txbuilder

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salvium/wallet-core/address"
	"github.com/salvium/wallet-core/crypto"
	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/feemodel"
	"github.com/salvium/wallet-core/rpcclient"
	"github.com/salvium/wallet-core/scan"
	"github.com/salvium/wallet-core/store"
	"github.com/salvium/wallet-core/txser"
)

// Destination is one payment request: an address and an amount of the
// transaction's asset type.
type Destination struct {
	Addr   address.Address
	Amount uint64
}

// Options configures one build_transfer call.
type Options struct {
	AssetType    string
	Priority     feemodel.PriorityTier
	Strategy     Strategy
	SpendableAge uint64
	ChainHeight  uint64
	ShortMedian  uint64
	LongMedian   uint64
}

// SignedTx is build_transfer's result: the assembled, signed transaction
// plus bookkeeping convenient for a caller that wants to track it before
// confirmation.
type SignedTx struct {
	ID     string
	Tx     enote.Transaction
	TxHash [32]byte
	Fee    uint64
}

// Builder assembles and signs transactions against one wallet's key
// material, scanner tables, and store snapshot.
type Builder struct {
	Daemon        rpcclient.DaemonClient
	Store         store.Store
	Wallet        *scan.Wallet
	ChangeAddress address.Address

	// Rand is the randomness source for ephemeral scalars, decoy draws,
	// and selection shuffling. nil means crypto/rand.Reader; tests inject
	// a seeded reader for deterministic builds.
	Rand io.Reader

	decoys *decoyPicker
	log    *zap.SugaredLogger
}

func (b *Builder) rng() io.Reader {
	if b.Rand != nil {
		return b.Rand
	}
	return rand.Reader
}

// New constructs a Builder. log may be nil.
func New(daemon rpcclient.DaemonClient, st store.Store, wallet *scan.Wallet, changeAddress address.Address, log *zap.SugaredLogger) *Builder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder{
		Daemon:        daemon,
		Store:         st,
		Wallet:        wallet,
		ChangeAddress: changeAddress,
		decoys:        newDecoyPicker(daemon),
		log:           log,
	}
}

// BuildTransfer builds and signs a transfer: select inputs,
// fetch decoys, derive per-input secrets, construct destinations and
// change, converge on a fee, assemble, and sign.
func (b *Builder) BuildTransfer(ctx context.Context, destinations []Destination, opts Options) (*SignedTx, error) {
	return b.build(ctx, destinations, opts, enote.TxTransfer, 0, false, 0)
}

// BuildSweep is the sweep variant of a transfer: the single destination
// receives sum(selected) - fee and there is no change output.
func (b *Builder) BuildSweep(ctx context.Context, dest address.Address, opts Options) (*SignedTx, error) {
	unspent, err := b.Store.ListUnspent(ctx, store.Filter{AssetType: opts.AssetType})
	if err != nil {
		return nil, fmt.Errorf("txbuilder: list_unspent: %w", err)
	}
	var usable []enote.UTXORecord
	for _, u := range unspent {
		if u.IsSpendable(opts.ChainHeight, opts.SpendableAge) {
			usable = append(usable, u)
		}
	}
	if len(usable) == 0 {
		return nil, &ErrInsufficientFunds{Need: 1, Have: 0}
	}
	if len(usable) > maxInputs {
		usable = usable[:maxInputs]
	}
	var sum uint64
	for _, u := range usable {
		sum += u.Amount
	}
	fee := feemodel.EstimateFee(opts.ChainHeight, opts.ShortMedian, opts.LongMedian, len(usable), 1, opts.Priority)
	if fee >= sum {
		return nil, &ErrInsufficientFunds{Need: fee + 1, Have: sum}
	}
	return b.assembleFixed(ctx, usable, []Destination{{Addr: dest, Amount: sum - fee}}, fee, enote.TxTransfer, 0, 0)
}

// BuildBurn builds a burn transaction: tx_type=BURN with
// amount_burnt set via extra and no owned output for that amount. The
// burnt amount is covered by input selection like a destination would
// be, so inputs - change - fee leaves exactly amount unclaimed.
func (b *Builder) BuildBurn(ctx context.Context, amount uint64, opts Options) (*SignedTx, error) {
	return b.build(ctx, nil, opts, enote.TxBurn, 0, false, amount)
}

// BuildStake builds a stake transaction: tx_type=STAKE with a
// locked change output at unlock_time = current_height + lockPeriod.
func (b *Builder) BuildStake(ctx context.Context, amount uint64, lockPeriod uint64, opts Options) (*SignedTx, error) {
	dest := Destination{Addr: b.ChangeAddress, Amount: amount}
	return b.build(ctx, []Destination{dest}, opts, enote.TxStake, opts.ChainHeight+lockPeriod, true, 0)
}

// build is the shared selection+assembly path for Transfer/Burn/Stake.
// noChange forces the accumulated change back into the single requested
// destination instead of appending a separate change output (used by
// BuildStake, whose locked destination already plays that role).
func (b *Builder) build(ctx context.Context, destinations []Destination, opts Options, txType enote.TxType, unlockTime uint64, noChange bool, burnAmount uint64) (*SignedTx, error) {
	var target uint64
	for _, d := range destinations {
		target += d.Amount
	}
	target += burnAmount

	unspent, err := b.Store.ListUnspent(ctx, store.Filter{AssetType: opts.AssetType})
	if err != nil {
		return nil, fmt.Errorf("txbuilder: list_unspent: %w", err)
	}

	outputCount := len(destinations) + 1
	if noChange {
		outputCount = len(destinations)
	}
	feeForInputs := func(k int) uint64 {
		return feemodel.EstimateFee(opts.ChainHeight, opts.ShortMedian, opts.LongMedian, k, outputCount, opts.Priority)
	}

	selected, sum, err := selectUTXOs(unspent, opts.ChainHeight, opts.SpendableAge, target, outputCount, opts.Strategy, feeForInputs, b.rng())
	if err != nil {
		return nil, err
	}
	fee := feeForInputs(len(selected))

	// After ring construction the actual byte-weight is
	// known; weightEstimate only depends on input/output counts, which
	// selection has already fixed, so no further fee growth is possible
	// under this module's weight model and a single pass suffices.

	dests := append([]Destination(nil), destinations...)
	if !noChange {
		change := sum - target - fee
		dests = append(dests, Destination{Addr: b.ChangeAddress, Amount: change})
	} else if len(dests) > 0 {
		dests[len(dests)-1].Amount += sum - target - fee
	}

	return b.assembleFixed(ctx, selected, dests, fee, txType, unlockTime, burnAmount)
}

// assembleFixed builds inputs (with decoys and opaque ring signatures)
// and outputs for a fixed selection and destination list, then produces
// the final SignedTx.
func (b *Builder) assembleFixed(ctx context.Context, selected []enote.UTXORecord, dests []Destination, fee uint64, txType enote.TxType, unlockTime uint64, burnAmount uint64) (*SignedTx, error) {
	inputs := make([]enote.Input, len(selected))
	signers := make([]*crypto.RingSigner, len(selected))

	for i, rec := range selected {
		srcTx, err := b.Store.GetTransaction(ctx, rec.TxHash)
		if err != nil {
			return nil, fmt.Errorf("txbuilder: get_transaction(%x): %w", rec.TxHash, err)
		}
		secret, err := b.Wallet.DeriveInputSecret(srcTx, int(rec.OutputIndex), rec.BlockHeight)
		if err != nil {
			return nil, fmt.Errorf("txbuilder: derive input secret: %w", err)
		}

		ring, err := b.decoys.ring(ctx, rec.AssetType, rec.Amount, rec.GlobalIndex, rec.OneTimePubkey, rec.Commitment, b.rng())
		if err != nil {
			return nil, err
		}
		sortRingByGlobalIndex(ring)

		ringKeys, realIndex := ringKeysAndRealIndex(ring, rec.GlobalIndex)
		if realIndex < 0 {
			return nil, fmt.Errorf("txbuilder: real output missing from its own ring")
		}
		signer, err := crypto.NewRingSigner(secret, ringKeys, realIndex)
		if err != nil {
			return nil, fmt.Errorf("txbuilder: ring signer: %w", err)
		}
		signers[i] = signer

		// keyOffsetsFrom and NewRingSigner above both consume the same
		// ascending-global-index ordering of ring, so the member order a
		// verifier reconstructs from the serialized offsets matches the
		// order the signature was actually produced against.
		offsets := keyOffsetsFrom(ring)
		inputs[i] = enote.Input{Kind: enote.InputKey, KeyOffsets: offsets, KeyImage: rec.KeyImage}
	}

	built := make([]builtOutput, len(dests))
	var sharedR [32]byte
	haveSharedR := false
	for _, d := range dests {
		if isLegacyAddress(d.Addr) && !haveSharedR {
			r, err := randomScalar(b.rng())
			if err != nil {
				return nil, err
			}
			sharedR = r
			haveSharedR = true
			break
		}
	}

	var firstKeyImage *[32]byte
	if len(inputs) > 0 {
		ki := inputs[0].KeyImage
		firstKeyImage = &ki
	}
	inputContext := scan.BuildInputContext(firstKeyImage, 0)

	for i, d := range dests {
		var bo builtOutput
		var err error
		if isLegacyAddress(d.Addr) {
			bo, err = buildLegacyDestination(sharedR, d.Addr, d.Amount, uint32(i))
		} else {
			bo, err = buildCarrotDestination(d.Addr, d.Amount, inputContext, b.rng())
		}
		if err != nil {
			return nil, err
		}
		built[i] = bo
	}

	prefix := enote.Prefix{
		Version:    2,
		UnlockTime: unlockTime,
		Type:       txType,
	}
	for _, bo := range built {
		prefix.Outputs = append(prefix.Outputs, bo.Output)
	}

	var eph enote.EphemeralKeys
	if len(built) == 1 {
		eph.TxPubkey = built[0].EphemeralPubkey
	} else {
		if haveSharedR {
			r := sharedR
			pk := curve.ScalarMultBase(r).Compress()
			eph.TxPubkey = &pk
		}
		for _, bo := range built {
			eph.AdditionalPubkeys = append(eph.AdditionalPubkeys, *bo.EphemeralPubkey)
		}
	}
	prefix.Extra = txser.BuildExtra(eph)
	if burnAmount > 0 {
		// The burn tag must land before hashing so the signatures bind it.
		prefix.Extra = append(prefix.Extra, enote.ExtraTagBurnAmount)
		prefix.Extra = txser.PutVarint(prefix.Extra, burnAmount)
	}

	prefixHash := txser.PrefixHash(prefix)

	rct := enote.RCTSignatures{Type: 2, Fee: fee}
	for _, bo := range built {
		rct.OutPk = append(rct.OutPk, bo.OutPk)
		rct.EcdhInfo = append(rct.EcdhInfo, bo.Ecdh)
	}

	var sigBytes []byte
	for _, signer := range signers {
		sig, err := signer.Sign(prefixHash)
		if err != nil {
			return nil, fmt.Errorf("txbuilder: sign input: %w", err)
		}
		sigBytes = append(sigBytes, encodeRingSignature(sig)...)
	}
	rct.Signatures = sigBytes

	tx := enote.Transaction{Prefix: prefix, RCT: rct}
	txHash := txser.TxHash(tx)

	return &SignedTx{ID: uuid.NewString(), Tx: tx, TxHash: txHash, Fee: fee}, nil
}

func isLegacyAddress(a address.Address) bool {
	switch a.Tag {
	case address.TagMainnetCarrot, address.TagMainnetCarrotSub, address.TagTestnetCarrot, address.TagStagenetCarrot:
		return false
	default:
		return true
	}
}

// sortRingByGlobalIndex sorts ring in place by ascending global index --
// the single canonical member order this module uses both to serialize
// key_offsets (keyOffsetsFrom) and to build the ring a signature is
// produced against (ringKeysAndRealIndex / crypto.NewRingSigner), so a
// verifier reconstructing the ring from the wire-format offsets agrees
// with the order the signature actually covers.
func sortRingByGlobalIndex(ring []rpcclient.DecoyOutput) {
	sort.Slice(ring, func(i, j int) bool { return ring[i].GlobalIndex < ring[j].GlobalIndex })
}

// keyOffsetsFrom delta-encodes ring's ascending global indices into the
// transaction's key_offsets.
// ring must already be sorted by sortRingByGlobalIndex.
func keyOffsetsFrom(ring []rpcclient.DecoyOutput) []uint64 {
	offsets := make([]uint64, len(ring))
	var prev uint64
	for i, d := range ring {
		if i == 0 {
			offsets[i] = d.GlobalIndex
		} else {
			offsets[i] = d.GlobalIndex - prev
		}
		prev = d.GlobalIndex
	}
	return offsets
}

// ringKeysAndRealIndex extracts ring's public keys in its current order
// plus the position of the member whose global index is realGlobalIndex,
// for crypto.NewRingSigner. ring must already be sorted by
// sortRingByGlobalIndex so this position matches keyOffsetsFrom's.
func ringKeysAndRealIndex(ring []rpcclient.DecoyOutput, realGlobalIndex uint64) ([][32]byte, int) {
	keys := make([][32]byte, len(ring))
	realIndex := -1
	for i, d := range ring {
		keys[i] = d.Key
		if d.GlobalIndex == realGlobalIndex {
			realIndex = i
		}
	}
	return keys, realIndex
}

func encodeRingSignature(sig *crypto.RingSignature) []byte {
	out := append([]byte{}, sig.KeyImage[:]...)
	out = append(out, sig.C[:]...)
	for _, r := range sig.Responses {
		out = append(out, r[:]...)
	}
	return out
}
