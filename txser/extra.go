package txser

import "github.com/salvium/wallet-core/enote"

// BuildExtra assembles the tag-length-value extra stream:
// tag 0x01 tx_pubkey(32), tag 0x04
// additional_pubkeys[count‖keys]. keys carries an optional single
// tx_pubkey and/or a set of per-output additional pubkeys; either or both
// may be present depending on the transaction (legacy single-R vs CARROT
// or multi-destination transactions requiring per-output ephemeral keys).
func BuildExtra(eph enote.EphemeralKeys) []byte {
	var out []byte
	if eph.TxPubkey != nil {
		out = append(out, enote.ExtraTagTxPubkey)
		out = append(out, eph.TxPubkey[:]...)
	}
	if len(eph.AdditionalPubkeys) > 0 {
		out = append(out, enote.ExtraTagAdditionalPubkeys)
		out = PutVarint(out, uint64(len(eph.AdditionalPubkeys)))
		for _, k := range eph.AdditionalPubkeys {
			out = append(out, k[:]...)
		}
	}
	return out
}

// ParseExtra walks the tag-length-value extra stream, stopping safely at
// the first tag it doesn't recognize.
func ParseExtra(extra []byte) enote.EphemeralKeys {
	var out enote.EphemeralKeys
	pos := 0
	for pos < len(extra) {
		tag := extra[pos]
		pos++
		switch tag {
		case enote.ExtraTagTxPubkey:
			if pos+32 > len(extra) {
				return out
			}
			var k [32]byte
			copy(k[:], extra[pos:pos+32])
			out.TxPubkey = &k
			pos += 32
		case enote.ExtraTagNonce:
			if pos >= len(extra) {
				return out
			}
			n := int(extra[pos])
			pos++
			if pos+n > len(extra) {
				return out
			}
			pos += n
		case enote.ExtraTagAdditionalPubkeys:
			count, n, ok := ReadVarint(extra[pos:])
			if !ok {
				return out
			}
			pos += n
			if pos+int(count)*32 > len(extra) {
				return out
			}
			out.AdditionalPubkeys = make([][32]byte, count)
			for i := uint64(0); i < count; i++ {
				copy(out.AdditionalPubkeys[i][:], extra[pos:pos+32])
				pos += 32
			}
		default:
			return out
		}
	}
	return out
}
