package scan

import (
	"encoding/binary"
	"testing"

	"github.com/salvium/wallet-core/curve"
	"github.com/salvium/wallet-core/enote"
	"github.com/salvium/wallet-core/keys"
	"github.com/salvium/wallet-core/xhash"
)

// buildCarrotOutput runs the forward (sender) direction of the CARROT
// derivation against a known recipient spend pubkey, producing a valid
// enote plus its ring-confidential fields, for use as a scan fixture.
func buildCarrotOutput(t *testing.T, de [32]byte, recipientViewPub [32]byte, recipientSpendPub [32]byte, inputContext [33]byte, amount uint64) (enote.Output, [32]byte, enote.EcdhTuple, [32]byte) {
	t.Helper()

	De := curve.X25519(de, curve.X25519BasePoint)
	sSrUnctx := curve.X25519(de, recipientViewPub)
	sSrCtx := xhash.H32(sSrUnctx[:], "Carrot sender-receiver secret", De[:], inputContext[:])

	var amountBytes [8]byte
	binary.LittleEndian.PutUint64(amountBytes[:], amount)
	enoteType := []byte{0}
	mask := xhash.Hn(sSrCtx[:], "Carrot commitment mask", amountBytes[:], recipientSpendPub[:], enoteType)
	commitment := pedersenCommit(amount, mask)

	kog := xhash.Hn(sSrCtx[:], "Carrot key extension G", commitment[:])
	kot := xhash.Hn(sSrCtx[:], "Carrot key extension T", commitment[:])

	kjsPoint, err := curve.Decompress(recipientSpendPub)
	if err != nil {
		t.Fatalf("decompress recipient spend pub: %v", err)
	}
	ext := curve.ScalarMultBase(kog).Add(curve.BaseT().ScalarMult(kot))
	Ko := kjsPoint.Add(ext).Compress()

	viewTag := xhash.H3(sSrUnctx[:], "Carrot view tag", inputContext[:], Ko[:])

	encMask := xhash.H8(sSrCtx[:], "Carrot encryption mask a", Ko[:])
	ecdh := enote.EcdhTuple{EncryptedAmount: xor8(amountBytes, encMask)}

	out := enote.Output{Target: enote.OutputTarget{Kind: enote.TargetCarrotV1, Key: Ko, ViewTag3: viewTag}}
	return out, commitment, ecdh, De
}

func TestCarrotScanOwnedOutput(t *testing.T) {
	ck := keys.DeriveCarrot([32]byte{1, 2, 3})
	table := NewCarrotTable(ck)

	var de [32]byte
	de[0] = 42
	ctx := BuildInputContext(&[32]byte{5}, 0)
	out, commitment, ecdh, De := buildCarrotOutput(t, de, ck.PrimaryViewPubkey, ck.AccountSpendPubkey, ctx, 250)

	res, err := CarrotScan(table, ck, &De, ctx, out, 1, commitment, ecdh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("expected CARROT output to be recognized as owned")
	}
	if res.Amount != 250 {
		t.Errorf("amount = %d, want 250", res.Amount)
	}
	if pedersenCommit(res.Amount, res.Mask) != commitment {
		t.Error("recovered amount/mask do not reconstruct the commitment")
	}
	if !res.IsCarrot {
		t.Error("expected IsCarrot = true")
	}
}

// TestCarrotScanViewTagMismatch: a random, unrelated
// view tag must reject during the cheap fast-reject step, never reaching
// key-extension or table lookup.
func TestCarrotScanViewTagMismatch(t *testing.T) {
	ck := keys.DeriveCarrot([32]byte{7})
	table := NewCarrotTable(ck)

	var de [32]byte
	de[0] = 9
	De := curve.X25519(de, curve.X25519BasePoint)
	ctx := BuildInputContext(nil, 100)

	out := enote.Output{Target: enote.OutputTarget{
		Kind:     enote.TargetCarrotV1,
		Key:      [32]byte{1, 1, 1, 1},
		ViewTag3: [3]byte{0xde, 0xad, 0xbe},
	}}

	res, err := CarrotScan(table, ck, &De, ctx, out, 0, [32]byte{}, enote.EcdhTuple{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Fatal("expected view-tag mismatch to reject the output")
	}
}

func TestCarrotScanMissingEphemeral(t *testing.T) {
	ck := keys.DeriveCarrot([32]byte{3})
	table := NewCarrotTable(ck)

	out := enote.Output{Target: enote.OutputTarget{Kind: enote.TargetCarrotV1, Key: [32]byte{2}}}
	res, err := CarrotScan(table, ck, nil, BuildInputContext(nil, 0), out, 0, [32]byte{}, enote.EcdhTuple{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Fatal("expected missing per-output ephemeral pubkey to reject the output")
	}
}
