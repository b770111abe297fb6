package keys

import (
	"errors"

	"github.com/mr-tron/base58"
)

var errSeedDisplayLength = errors.New("keys: decoded seed display string is not 32 bytes")

// SeedDisplayString renders a raw seed as a single base58 blob for
// copy/paste display. This is deliberately NOT the address codec's
// block-wise encoding (see address/base58.go) -- there is no wire-format
// compatibility requirement on a human-facing seed backup string, so the
// monolithic big-integer base58 github.com/mr-tron/base58 implements is
// the right tool. Mnemonic wordlists are out of scope; this is
// the interim display form until a wordlist codec is layered on top.
func SeedDisplayString(seed [32]byte) string {
	return base58.Encode(seed[:])
}

// ParseSeedDisplayString reverses SeedDisplayString.
func ParseSeedDisplayString(s string) ([32]byte, error) {
	var seed [32]byte
	raw, err := base58.Decode(s)
	if err != nil {
		return seed, err
	}
	if len(raw) != 32 {
		return seed, errSeedDisplayLength
	}
	copy(seed[:], raw)
	return seed, nil
}
