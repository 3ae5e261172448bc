package notifier

import (
	"context"
	"sync"
)

// Hub is an in-process per-user pub/sub used by the SSE stream. Publishing
// never blocks: a subscriber whose buffer is full misses the event and is
// expected to reload from the API.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	buffer int
}

type subscription struct {
	ch chan Event
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[string]map[*subscription]struct{}), buffer: buffer}
}

// Subscribe returns a channel of events for userID and a cancel func that
// must be called to release it. The channel is closed by cancel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	sub := &subscription{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func (h *Hub) Notify(_ context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ev.UserID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
