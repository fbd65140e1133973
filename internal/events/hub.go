package events

import "sync"

// Subscriber receives published events. Send failures mean the
// listener's transport is gone; the hub skips it and moves on.
type Subscriber interface {
	Send(Event) error
}

// Hub broadcasts events to the current subscriber set.
type Hub struct {
	mu   sync.Mutex
	subs []Subscriber
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a listener. Duplicate registrations are ignored.
func (h *Hub) Subscribe(sub Subscriber) {
	if h == nil || sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.subs {
		if existing == sub {
			return
		}
	}
	h.subs = append(h.subs, sub)
}

// Unsubscribe removes a listener. Unknown listeners are a no-op.
func (h *Hub) Unsubscribe(sub Subscriber) {
	if h == nil || sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.subs {
		if existing == sub {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to a snapshot of the subscriber set in
// subscription order. Listeners whose Send fails are skipped.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	snapshot := append([]Subscriber(nil), h.subs...)
	h.mu.Unlock()

	for _, sub := range snapshot {
		_ = sub.Send(evt)
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
