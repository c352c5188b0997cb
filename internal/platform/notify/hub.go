package notify

import (
	"context"
	"sync"
)

// Hub はプロセス内の購読者へ通知を配ります。遅れている購読者への通知は捨てます。
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan string]struct{}
	closed bool
}

var _ Notifier = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

// Subscribe は通知を受け取るチャネルと購読解除関数を返します。
func (h *Hub) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

// NotifyDataUpdated は全購読者にActionDataUpdatedを送ります。
func (h *Hub) NotifyDataUpdated(context.Context) error {
	h.Broadcast(ActionDataUpdated)
	return nil
}

// Broadcast はブロックせずに全購読者へactionを送ります。
func (h *Hub) Broadcast(action string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- action:
		default:
			// 未読の通知が残っていれば十分
		}
	}
}

// Close は全購読チャネルを閉じます。
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

// Len は現在の購読者数です。
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
