package txbuilder

import (
	"encoding/binary"
	"io"

	"github.com/salvium/wallet-core/address"
	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/xhash"
)

// builtOutput is one constructed destination: the on-wire output plus the
// pieces the assembler needs for extra and the RCT section.
type builtOutput struct {
	Output            enote.Output
	OutPk             [32]byte
	Ecdh              enote.EcdhTuple
	Mask              [32]byte
	EphemeralPubkey   *[32]byte // R (legacy) or D_e (CARROT), goes into extra
}

// buildLegacyDestination runs the legacy scan path in reverse: pick
// ephemeral scalar r, publish R = r·G, derive D =
// 8·r·ViewPub, then Ko/viewtag/encrypted-amount/commitment exactly as
// LegacyScan recovers them, so a receiving wallet's forward scan finds
// this output.
func buildLegacyDestination(r [32]byte, addr address.Address, amount uint64, outputIndex uint32) (builtOutput, error) {
	R := curve.ScalarMultBase(r)

	viewPub, err := curve.Decompress(addr.ViewPub)
	if err != nil {
		return builtOutput{}, &ErrCommitmentMismatch{}
	}
	D := viewPub.ScalarMult(r).ScalarMult([32]byte{8})
	Dc := D.Compress()
	idxBytes := leUint32(outputIndex)

	hDi := xhash.Hn(nil, "", Dc[:], idxBytes)

	spendPub, err := curve.Decompress(addr.SpendPub)
	if err != nil {
		return builtOutput{}, &ErrCommitmentMismatch{}
	}
	Ko := curve.ScalarMultBase(hDi).Add(spendPub)
	KoBytes := Ko.Compress()

	s := xhash.H32(nil, "", Dc[:], idxBytes)
	encMask := xhash.H8(s[:], "amount")
	var amtBytes [8]byte
	binary.LittleEndian.PutUint64(amtBytes[:], amount)
	encAmount := xor8(amtBytes, encMask)
	mask := xhash.Hn(s[:], "commitment_mask")
	outPk := pedersenCommit(amount, mask)

	Rbytes := R.Compress()
	out := enote.Output{
		Target: enote.OutputTarget{
			Kind:     enote.TargetTaggedKey,
			Key:      KoBytes,
			Asset:    "SAL",
			ViewTag1: hDi[0],
		},
	}
	return builtOutput{
		Output:          out,
		OutPk:           outPk,
		Ecdh:            enote.EcdhTuple{EncryptedAmount: encAmount},
		Mask:            mask,
		EphemeralPubkey: &Rbytes,
	}, nil
}

// buildCarrotDestination runs the CARROT scan path in reverse: pick
// ephemeral scalar d_e, publish D_e via the X25519
// base point, derive the shared secret through the same Diffie-Hellman
// relation CarrotScan uses (X25519 is commutative under one clamp per
// side), then key-extend the recipient's published subaddress spend key
// rather than looking one up.
func buildCarrotDestination(addr address.Address, amount uint64, inputContext [33]byte, rng io.Reader) (builtOutput, error) {
	dRaw, err := randomScalar(rng)
	if err != nil {
		return builtOutput{}, err
	}
	De := curve.X25519(dRaw, curve.X25519BasePoint)
	sSrUnctx := curve.X25519(dRaw, addr.ViewPub)

	sSrCtx := xhash.H32(sSrUnctx[:], "Carrot sender-receiver secret", De[:], inputContext[:])

	enoteType := []byte{0}
	mask := xhash.Hn(sSrCtx[:], "Carrot commitment mask", leUint64(amount), addr.SpendPub[:], enoteType)
	outPk := pedersenCommit(amount, mask)

	kog := xhash.Hn(sSrCtx[:], "Carrot key extension G", outPk[:])
	kot := xhash.Hn(sSrCtx[:], "Carrot key extension T", outPk[:])

	kjs, err := curve.Decompress(addr.SpendPub)
	if err != nil {
		return builtOutput{}, &ErrCommitmentMismatch{}
	}
	ext := curve.ScalarMultBase(kog).Add(curve.BaseT().ScalarMult(kot))
	Ko := kjs.Add(ext)
	KoBytes := Ko.Compress()

	encMask := xhash.H8(sSrCtx[:], "Carrot encryption mask a", KoBytes[:])
	var amtBytes [8]byte
	binary.LittleEndian.PutUint64(amtBytes[:], amount)
	encAmount := xor8(amtBytes, encMask)

	tag := xhash.H3(sSrUnctx[:], "Carrot view tag", inputContext[:], KoBytes[:])

	out := enote.Output{
		Target: enote.OutputTarget{
			Kind:     enote.TargetCarrotV1,
			Key:      KoBytes,
			Asset:    "SAL",
			ViewTag3: tag,
		},
	}
	return builtOutput{
		Output:          out,
		OutPk:           outPk,
		Ecdh:            enote.EcdhTuple{EncryptedAmount: encAmount},
		Mask:            mask,
		EphemeralPubkey: &De,
	}, nil
}

func randomScalar(rng io.Reader) ([32]byte, error) {
	var raw [32]byte
	if _, err := io.ReadFull(rng, raw[:]); err != nil {
		return [32]byte{}, err
	}
	return curve.ScalarReduce(raw[:]), nil
}

func pedersenCommit(amount uint64, mask [32]byte) [32]byte {
	var amtScalar [32]byte
	binary.LittleEndian.PutUint64(amtScalar[:8], amount)
	aG := curve.ScalarMultBase(amtScalar)
	mH := curve.BaseH().ScalarMult(mask)
	return aG.Add(mH).Compress()
}

func xor8(a, b [8]byte) [8]byte {
	var out [8]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func leUint32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func leUint64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
