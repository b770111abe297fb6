package address

import (
	"fmt"

	"github.com/salvium/wallet-core/xhash"
)

// NetworkTag is the single-byte prefix identifying network × address
// kind.
type NetworkTag byte

const (
	TagMainnetLegacy         NetworkTag = 0x12
	TagMainnetLegacySub      NetworkTag = 0x2a
	TagMainnetLegacyIntegr   NetworkTag = 0x13
	TagMainnetCarrot         NetworkTag = 0x70
	TagMainnetCarrotSub      NetworkTag = 0x71

	TagTestnetLegacy    NetworkTag = 0x35
	TagTestnetLegacySub NetworkTag = 0x3f
	TagTestnetCarrot    NetworkTag = 0x75

	TagStagenetLegacy    NetworkTag = 0x18
	TagStagenetLegacySub NetworkTag = 0x19
	TagStagenetCarrot    NetworkTag = 0x78
)

const checksumLen = 4
const paymentIDLen = 8

// InvalidReason enumerates why Decode rejected an address string.
type InvalidReason string

const (
	ReasonBadBase58    InvalidReason = "bad_base58"
	ReasonBadLength    InvalidReason = "bad_length"
	ReasonUnknownTag   InvalidReason = "unknown_tag"
	ReasonBadChecksum  InvalidReason = "bad_checksum"
)

// InvalidError reports a malformed address: bad length, unknown network
// tag, or checksum mismatch.
type InvalidError struct {
	Reason InvalidReason
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("address: invalid address (%s)", e.Reason)
}

// Address is the decoded payload of an address string: a network tag, the
// spend/view public keys, and an optional 8-byte payment id for integrated
// addresses.
type Address struct {
	Tag       NetworkTag
	SpendPub  [32]byte
	ViewPub   [32]byte
	PaymentID *[8]byte
}

// Encode serializes addr as network_tag ‖ spend_pub ‖ view_pub ‖
// [payment_id] ‖ checksum(first 4 bytes of Keccak(prefix)), base58-encoded
// in 8-byte blocks.
func Encode(addr Address) string {
	prefix := make([]byte, 0, 1+32+32+paymentIDLen)
	prefix = append(prefix, byte(addr.Tag))
	prefix = append(prefix, addr.SpendPub[:]...)
	prefix = append(prefix, addr.ViewPub[:]...)
	if addr.PaymentID != nil {
		prefix = append(prefix, addr.PaymentID[:]...)
	}

	checksum := xhash.Keccak256(prefix)
	full := append(prefix, checksum[:checksumLen]...)
	return Base58Encode(full)
}

// Decode parses and validates an address string, verifying its checksum
// and determining whether it carries an integrated payment id from its
// total length.
func Decode(s string) (Address, error) {
	raw, err := Base58Decode(s)
	if err != nil {
		return Address{}, &InvalidError{Reason: ReasonBadBase58}
	}

	const baseLen = 1 + 32 + 32 + checksumLen
	const integratedLen = baseLen + paymentIDLen

	var hasPaymentID bool
	switch len(raw) {
	case baseLen:
		hasPaymentID = false
	case integratedLen:
		hasPaymentID = true
	default:
		return Address{}, &InvalidError{Reason: ReasonBadLength}
	}

	tag := NetworkTag(raw[0])
	if !knownTag(tag) {
		return Address{}, &InvalidError{Reason: ReasonUnknownTag}
	}

	prefixLen := len(raw) - checksumLen
	prefix := raw[:prefixLen]
	gotChecksum := raw[prefixLen:]
	wantChecksum := xhash.Keccak256(prefix)
	for i := 0; i < checksumLen; i++ {
		if gotChecksum[i] != wantChecksum[i] {
			return Address{}, &InvalidError{Reason: ReasonBadChecksum}
		}
	}

	var addr Address
	addr.Tag = tag
	copy(addr.SpendPub[:], raw[1:33])
	copy(addr.ViewPub[:], raw[33:65])
	if hasPaymentID {
		var pid [8]byte
		copy(pid[:], raw[65:73])
		addr.PaymentID = &pid
	}
	return addr, nil
}

func knownTag(tag NetworkTag) bool {
	switch tag {
	case TagMainnetLegacy, TagMainnetLegacySub, TagMainnetLegacyIntegr,
		TagMainnetCarrot, TagMainnetCarrotSub,
		TagTestnetLegacy, TagTestnetLegacySub, TagTestnetCarrot,
		TagStagenetLegacy, TagStagenetLegacySub, TagStagenetCarrot:
		return true
	default:
		return false
	}
}
