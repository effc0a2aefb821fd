package sqlite

import "sync"

// watchHub fans committed-change signals out to per-plan subscribers.
// Channels are buffered with capacity 1 and written with a drop-if-full send,
// so a burst of commits coalesces into a single pending signal.
type watchHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
	closed bool
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[string]map[int]chan struct{})}
}

func (h *watchHub) subscribe(planID string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan struct{}, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	if h.subs[planID] == nil {
		h.subs[planID] = make(map[int]chan struct{})
	}
	h.subs[planID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subs[planID]; ok {
			if _, live := subs[id]; live {
				delete(subs, id)
				close(ch)
				if len(subs) == 0 {
					delete(h.subs, planID)
				}
			}
		}
	}
	return ch, cancel
}

func (h *watchHub) notify(planID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[planID] {
		select {
		case ch <- struct{}{}:
		default: // a signal is already pending
		}
	}
}

func (h *watchHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	h.subs = make(map[string]map[int]chan struct{})
}
