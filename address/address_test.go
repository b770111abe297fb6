package address

import "testing"

// TestAddressRoundTrip: decode(encode(k)) == k for
// every valid key pair and network.
func TestAddressRoundTrip(t *testing.T) {
	tags := []NetworkTag{
		TagMainnetLegacy, TagMainnetCarrot,
		TagTestnetLegacy, TagTestnetCarrot,
		TagStagenetLegacy, TagStagenetCarrot,
	}
	for _, tag := range tags {
		addr := Address{
			Tag:      tag,
			SpendPub: fill(0x11),
			ViewPub:  fill(0x22),
		}
		encoded := Encode(addr)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("tag %x: decode(encode(addr)): %v", tag, err)
		}
		if decoded != addr {
			t.Fatalf("tag %x: round trip mismatch: got %+v, want %+v", tag, decoded, addr)
		}
	}
}

// TestAddressRoundTripIntegrated covers the integrated (payment-id)
// variant of the round-trip property.
func TestAddressRoundTripIntegrated(t *testing.T) {
	pid := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	addr := Address{
		Tag:       TagMainnetLegacyIntegr,
		SpendPub:  fill(0x33),
		ViewPub:   fill(0x44),
		PaymentID: &pid,
	}
	encoded := Encode(addr)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode(encode(addr)): %v", err)
	}
	if decoded.Tag != addr.Tag || decoded.SpendPub != addr.SpendPub || decoded.ViewPub != addr.ViewPub {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, addr)
	}
	if decoded.PaymentID == nil || *decoded.PaymentID != pid {
		t.Fatalf("payment id mismatch: got %v, want %v", decoded.PaymentID, pid)
	}
}

func TestAddressDecodeBadChecksum(t *testing.T) {
	addr := Address{Tag: TagMainnetLegacy, SpendPub: fill(0x55), ViewPub: fill(0x66)}
	encoded := Encode(addr)
	raw, err := Base58Decode(encoded)
	if err != nil {
		t.Fatalf("Base58Decode: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	corrupted := Base58Encode(raw)

	_, err = Decode(corrupted)
	var invalid *InvalidError
	if err == nil {
		t.Fatal("expected checksum error, got nil")
	}
	if !asInvalidError(err, &invalid) || invalid.Reason != ReasonBadChecksum {
		t.Fatalf("expected ReasonBadChecksum, got %v", err)
	}
}

func TestAddressDecodeBadLength(t *testing.T) {
	_, err := Decode(Base58Encode([]byte{1, 2, 3}))
	var invalid *InvalidError
	if !asInvalidError(err, &invalid) || invalid.Reason != ReasonBadLength {
		t.Fatalf("expected ReasonBadLength, got %v", err)
	}
}

func TestAddressDecodeUnknownTag(t *testing.T) {
	addr := Address{Tag: 0xEE, SpendPub: fill(0x77), ViewPub: fill(0x88)}
	encoded := Encode(addr)
	_, err := Decode(encoded)
	var invalid *InvalidError
	if !asInvalidError(err, &invalid) || invalid.Reason != ReasonUnknownTag {
		t.Fatalf("expected ReasonUnknownTag, got %v", err)
	}
}

func fill(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func asInvalidError(err error, target **InvalidError) bool {
	ie, ok := err.(*InvalidError)
	if !ok {
		return false
	}
	*target = ie
	return true
}
