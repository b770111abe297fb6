package syncengine

import (
	"context"
	"fmt"

	"github.com/salvium/wallet-core/store"
)

// reorgWalkbackLimit bounds how far detectReorg will walk back before
// giving up; a wallet that has gone this far out of sync needs a manual
// rescan rather than an automatic one.
const reorgWalkbackLimit = 1000

// detectReorg compares the locally stored block hash at each height below
// current against the daemon's header for that height, walking backward
// until it finds a match (the common ancestor) or exhausts
// reorgWalkbackLimit. It returns current-1 unchanged when there is no
// divergence at all, i.e. no reorg occurred.
func (e *Engine) detectReorg(ctx context.Context, current uint64) (uint64, error) {
	h := current - 1
	steps := 0
	for {
		local, err := e.db.GetBlockHash(ctx, h)
		if err != nil {
			if h == 0 {
				return 0, nil
			}
			// Nothing stored at this height yet (fresh wallet, or a
			// prior rollback already cleared it); treat as the
			// common ancestor.
			return h, nil
		}

		hdr, err := e.daemon.GetBlockHeaderByHeight(ctx, h)
		if err != nil {
			return 0, fmt.Errorf("syncengine: get_block_header_by_height(%d): %w", h, err)
		}

		if local == hdr.Hash {
			return h, nil
		}

		if h == 0 {
			return 0, fmt.Errorf("syncengine: reorg walkback reached genesis without finding a common ancestor")
		}
		steps++
		if steps > reorgWalkbackLimit {
			return 0, fmt.Errorf("syncengine: reorg walkback exceeded %d blocks without finding a common ancestor; manual rescan required", reorgWalkbackLimit)
		}
		h--
	}
}

// rollback applies store.Rollback down to common and publishes a Reorg
// event so callers (e.g. a CLI's progress display) can tell the
// difference between ordinary progress and a chain reorganization.
func (e *Engine) rollback(ctx context.Context, common uint64) error {
	oldTip, _ := e.db.GetSyncHeight(ctx)
	if err := store.Rollback(ctx, e.db, common); err != nil {
		return fmt.Errorf("syncengine: rollback to %d: %w", common, err)
	}
	e.log.Infow("reorg detected", "common_ancestor", common, "old_tip", oldTip)
	e.metrics.reorgs.Inc()
	var rolledBack uint64
	if oldTip > common+1 {
		rolledBack = oldTip - 1 - common
	}
	e.publish(Event{Kind: "reorg", CommonHeight: common, OldTip: oldTip, BlocksRolledBack: rolledBack})
	return nil
}
