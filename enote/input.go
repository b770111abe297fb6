package enote

// InputKind distinguishes a coinbase input from a key-image spend.
type InputKind uint8

const (
	InputGen InputKind = iota
	InputKey
)

// Input is either {kind=gen, height} or {kind=key, key_offsets[],
// key_image}. Amount is always 0 post-RingCT for key inputs.
type Input struct {
	Kind InputKind

	// Height is populated for InputGen.
	Height uint64

	// KeyOffsets are delta-encoded global indices into the ring; the ring
	// size is fixed by protocol. KeyImage uniquely identifies the spent
	// output. Both are populated for InputKey.
	KeyOffsets []uint64
	KeyImage   [32]byte
}
