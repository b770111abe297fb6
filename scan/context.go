package scan

import "encoding/binary"

// BuildInputContext constructs the 33-byte CARROT input_context binding
// an output to its enclosing transaction: 'R' ‖ first_key_image for a
// spending transaction, or 'C' ‖ LE64(height) ‖ 24 zero bytes for a
// coinbase.
func BuildInputContext(firstKeyImage *[32]byte, coinbaseHeight uint64) [33]byte {
	var ctx [33]byte
	if firstKeyImage != nil {
		ctx[0] = 'R'
		copy(ctx[1:], firstKeyImage[:])
		return ctx
	}
	ctx[0] = 'C'
	binary.LittleEndian.PutUint64(ctx[1:9], coinbaseHeight)
	return ctx
}
