package syncengine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/salvium/wallet-core/enote"
)

// txJSON mirrors the daemon's get_transactions as_json shape: a decoded
// transaction prefix plus its rct_signatures section, with all hash/key
// fields hex-encoded.
type txJSON struct {
	Version    uint64 `json:"version"`
	UnlockTime uint64 `json:"unlock_time"`
	TxType     uint8  `json:"type"`
	Extra      string `json:"extra"`

	Vin []struct {
		Gen *struct {
			Height uint64 `json:"height"`
		} `json:"gen"`
		Key *struct {
			Amount     uint64   `json:"amount"`
			KeyOffsets []uint64 `json:"key_offsets"`
			KeyImage   string   `json:"k_image"`
		} `json:"key"`
	} `json:"vin"`

	Vout []struct {
		Amount uint64 `json:"amount"`
		Target struct {
			Key *struct {
				Key string `json:"key"`
			} `json:"key"`
			TaggedKey *struct {
				Key     string `json:"key"`
				Asset   string `json:"asset_type"`
				ViewTag string `json:"view_tag"`
			} `json:"tagged_key"`
			CarrotV1 *struct {
				Key              string  `json:"key"`
				Asset            string  `json:"asset_type"`
				ViewTag          string  `json:"view_tag"`
				EncryptedAnchor  *string `json:"encrypted_janus_anchor"`
			} `json:"carrot_v1"`
		} `json:"target"`
	} `json:"vout"`

	RctSignatures struct {
		Type   uint8    `json:"type"`
		Fee    uint64   `json:"txnFee"`
		OutPk  []string `json:"outPk"`
		EcdhInfo []struct {
			Amount string `json:"amount"`
		} `json:"ecdhInfo"`
	} `json:"rct_signatures"`
	RctSigPrunable struct {
		Signatures string `json:"signatures"`
	} `json:"rctsig_prunable"`
}

// ParseTransactionJSON decodes one daemon-supplied transaction body into
// the canonical enote.Transaction shape the scanner and store consume.
// extra arrives as the daemon's raw byte array rather than a re-encoded
// TLV stream, so it round-trips through txser.ParseExtra unchanged.
func ParseTransactionJSON(data []byte) (enote.Transaction, error) {
	var raw txJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return enote.Transaction{}, fmt.Errorf("syncengine: decode transaction json: %w", err)
	}

	extra, err := hex.DecodeString(raw.Extra)
	if err != nil {
		return enote.Transaction{}, fmt.Errorf("syncengine: decode extra: %w", err)
	}

	prefix := enote.Prefix{
		Version:    raw.Version,
		UnlockTime: raw.UnlockTime,
		Extra:      extra,
		Type:       enote.TxType(raw.TxType),
	}

	for _, in := range raw.Vin {
		switch {
		case in.Gen != nil:
			prefix.Inputs = append(prefix.Inputs, enote.Input{Kind: enote.InputGen, Height: in.Gen.Height})
		case in.Key != nil:
			var ki [32]byte
			if err := decodeHash(&ki, in.Key.KeyImage); err != nil {
				return enote.Transaction{}, fmt.Errorf("syncengine: vin key_image: %w", err)
			}
			prefix.Inputs = append(prefix.Inputs, enote.Input{
				Kind:       enote.InputKey,
				KeyOffsets: in.Key.KeyOffsets,
				KeyImage:   ki,
			})
		default:
			return enote.Transaction{}, fmt.Errorf("syncengine: vin entry has neither gen nor key")
		}
	}

	for _, out := range raw.Vout {
		o := enote.Output{Amount: out.Amount}
		switch {
		case out.Target.Key != nil:
			o.Target.Kind = enote.TargetKey
			if err := decodeHash(&o.Target.Key, out.Target.Key.Key); err != nil {
				return enote.Transaction{}, fmt.Errorf("syncengine: vout key: %w", err)
			}
		case out.Target.TaggedKey != nil:
			o.Target.Kind = enote.TargetTaggedKey
			o.Target.Asset = out.Target.TaggedKey.Asset
			if err := decodeHash(&o.Target.Key, out.Target.TaggedKey.Key); err != nil {
				return enote.Transaction{}, fmt.Errorf("syncengine: vout tagged_key key: %w", err)
			}
			tag, err := hex.DecodeString(out.Target.TaggedKey.ViewTag)
			if err != nil || len(tag) != 1 {
				return enote.Transaction{}, fmt.Errorf("syncengine: vout tagged_key view_tag: malformed")
			}
			o.Target.ViewTag1 = tag[0]
		case out.Target.CarrotV1 != nil:
			o.Target.Kind = enote.TargetCarrotV1
			o.Target.Asset = out.Target.CarrotV1.Asset
			if err := decodeHash(&o.Target.Key, out.Target.CarrotV1.Key); err != nil {
				return enote.Transaction{}, fmt.Errorf("syncengine: vout carrot_v1 key: %w", err)
			}
			tag, err := hex.DecodeString(out.Target.CarrotV1.ViewTag)
			if err != nil || len(tag) != 3 {
				return enote.Transaction{}, fmt.Errorf("syncengine: vout carrot_v1 view_tag: malformed")
			}
			copy(o.Target.ViewTag3[:], tag)
			if out.Target.CarrotV1.EncryptedAnchor != nil {
				anchor, err := hex.DecodeString(*out.Target.CarrotV1.EncryptedAnchor)
				if err != nil || len(anchor) != 16 {
					return enote.Transaction{}, fmt.Errorf("syncengine: vout carrot_v1 encrypted_janus_anchor: malformed")
				}
				var a [16]byte
				copy(a[:], anchor)
				o.Target.EncryptedAnchor = &a
			}
		default:
			return enote.Transaction{}, fmt.Errorf("syncengine: vout target has no recognized variant")
		}
		prefix.Outputs = append(prefix.Outputs, o)
	}

	rct := enote.RCTSignatures{
		Type: raw.RctSignatures.Type,
		Fee:  raw.RctSignatures.Fee,
	}
	for _, s := range raw.RctSignatures.OutPk {
		var pk [32]byte
		if err := decodeHash(&pk, s); err != nil {
			return enote.Transaction{}, fmt.Errorf("syncengine: outPk: %w", err)
		}
		rct.OutPk = append(rct.OutPk, pk)
	}
	for _, e := range raw.RctSignatures.EcdhInfo {
		var tuple enote.EcdhTuple
		amt, err := hex.DecodeString(e.Amount)
		if err == nil && len(amt) == 8 {
			copy(tuple.EncryptedAmount[:], amt)
		}
		rct.EcdhInfo = append(rct.EcdhInfo, tuple)
	}
	if raw.RctSigPrunable.Signatures != "" {
		sig, err := hex.DecodeString(raw.RctSigPrunable.Signatures)
		if err == nil {
			rct.Signatures = sig
		}
	}

	return enote.Transaction{Prefix: prefix, RCT: rct}, nil
}

func decodeHash(dst *[32]byte, s string) error {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return fmt.Errorf("malformed 32-byte hex %q", s)
	}
	copy(dst[:], b)
	return nil
}
