// Package address implements the CryptoNote/Salvium address codec: the
// 8-byte-block base58 encoding and the network-tag/checksum framing,
// bit-exact with the existing network.
//
// github.com/mr-tron/base58 encodes a whole buffer as one big-endian
// integer, which produces different bytes than CryptoNote's per-8-byte-
// block scheme for any input longer than one block, so the block variant
// is implemented here directly.
package address

import "errors"

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const fullBlockSize = 8
const fullEncodedBlockSize = 11

// encodedBlockSizes[n] is the number of base58 characters a block of n
// raw bytes (0 <= n <= 8) encodes to under the CryptoNote scheme.
var encodedBlockSizes = [9]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

var decodeTable = buildDecodeTable()

func buildDecodeTable() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i, c := range alphabet {
		t[byte(c)] = int8(i)
	}
	return t
}

// EncodeBlock base58-encodes a single block of at most 8 raw bytes.
func EncodeBlock(block []byte) string {
	if len(block) == 0 || len(block) > fullBlockSize {
		panic("address: invalid block size")
	}
	encodedSize := encodedBlockSizes[len(block)]

	var num [8]byte
	copy(num[8-len(block):], block)
	n := beBytesToUint64(num[:])

	out := make([]byte, encodedSize)
	for i := encodedSize - 1; i >= 0; i-- {
		out[i] = alphabet[n%58]
		n /= 58
	}
	return string(out)
}

// DecodeBlock reverses EncodeBlock, given the expected raw block size.
func DecodeBlock(encoded string, rawSize int) ([]byte, error) {
	if rawSize < 0 || rawSize > fullBlockSize {
		return nil, errors.New("address: invalid block size")
	}
	expected := encodedBlockSizes[rawSize]
	if len(encoded) != expected {
		return nil, errors.New("address: wrong encoded block length")
	}

	var n uint64
	for i := 0; i < len(encoded); i++ {
		d := decodeTable[encoded[i]]
		if d < 0 {
			return nil, errors.New("address: invalid base58 character")
		}
		n = n*58 + uint64(d)
	}

	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	// The raw block occupies the low rawSize bytes of buf; the dropped
	// high bytes must have been zero or the input wasn't canonical.
	if !isZero(buf[:8-rawSize]) {
		return nil, errors.New("address: block overflow")
	}
	return append([]byte{}, buf[8-rawSize:]...), nil
}

// Base58Encode base58-encodes data by splitting it into fullBlockSize
// chunks, CryptoNote-style: every full 8-byte block encodes independently
// to 11 characters, and a trailing partial block encodes to its own
// shorter width, with the pieces concatenated in order.
func Base58Encode(data []byte) string {
	var out []byte
	for off := 0; off < len(data); off += fullBlockSize {
		end := off + fullBlockSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, EncodeBlock(data[off:end])...)
	}
	return string(out)
}

// Base58Decode reverses Base58Encode.
func Base58Decode(s string) ([]byte, error) {
	var out []byte
	pos := 0
	for pos < len(s) {
		// Determine how many characters the next block consumes by
		// greedily taking a full 11-char block unless fewer remain.
		remaining := len(s) - pos
		blockChars := fullEncodedBlockSize
		rawSize := fullBlockSize
		if remaining < fullEncodedBlockSize {
			var ok bool
			rawSize, ok = rawSizeForEncodedLen(remaining)
			if !ok {
				return nil, errors.New("address: invalid trailing block length")
			}
			blockChars = remaining
		}
		block, err := DecodeBlock(s[pos:pos+blockChars], rawSize)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		pos += blockChars
	}
	return out, nil
}

func rawSizeForEncodedLen(n int) (int, bool) {
	for raw, enc := range encodedBlockSizes {
		if enc == n {
			return raw, true
		}
	}
	return 0, false
}

func beBytesToUint64(b []byte) uint64 {
	var n uint64
	for _, v := range b {
		n = n<<8 | uint64(v)
	}
	return n
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
