package rpcclient

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NewTip is one "chain grew" notification delivered by Watcher.
type NewTip struct {
	Height uint64
	Hash   [32]byte
}

// Watcher subscribes to a daemon's new-block notification stream over a
// websocket, letting a sync loop (such as walletcli's "sync -watch") wake
// immediately on a new tip instead of only polling get_info every cycle.
type Watcher struct {
	url  string
	log  *zap.SugaredLogger
	tips chan NewTip
}

// NewWatcher constructs a Watcher against a daemon's websocket
// notification endpoint (e.g. "ws://127.0.0.1:19091/ws/new_block").
func NewWatcher(url string, log *zap.SugaredLogger) *Watcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Watcher{url: url, log: log, tips: make(chan NewTip, 8)}
}

// Tips returns the channel Watcher publishes new-tip notifications to.
func (w *Watcher) Tips() <-chan NewTip { return w.tips }

// Run connects and reads notifications until ctx is cancelled,
// reconnecting with a short backoff on any read error. It never returns
// an error to the caller: a lost websocket leaves the caller with its own
// polling fallback rather than surfacing as a sync error.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := w.runOnce(ctx); err != nil {
			w.log.Debugw("websocket watcher disconnected, retrying", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg struct {
			Height uint64 `json:"height"`
			Hash   string `json:"hash"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		var tip NewTip
		tip.Height = msg.Height
		copyHexHash(&tip.Hash, msg.Hash)
		select {
		case w.tips <- tip:
		default:
			// Drop if the consumer is behind; a sync loop only needs a
			// wake-up signal, not every intermediate tip.
		}
	}
}
