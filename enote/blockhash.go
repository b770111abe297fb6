package enote

// BlockHashEntry is one row of the block-hash log used exclusively for
// reorg detection. Heights are contiguous from sync_start to
// sync_height-1 by invariant.
type BlockHashEntry struct {
	Height uint64
	Hash   [32]byte
}
