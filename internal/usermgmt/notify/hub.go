package notify

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
)

const subscriberBuffer = 32

// Hub keeps events in process for live subscribers such as the admin
// event stream. Slow subscribers miss events instead of stalling delivery.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan domain.Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan domain.Event]struct{})}
}

func (h *Hub) Name() string { return "hub" }

// Subscribe registers a new listener. The returned cancel func must be
// called to release it; the channel is closed afterwards.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

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

// Subscribers returns the number of live listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Publish(_ context.Context, e domain.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
