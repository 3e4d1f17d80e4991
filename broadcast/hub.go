// Package broadcast is an in-process, content-agnostic topic signal. It stands in for a
// same-origin broadcast channel: listeners learn only that something happened.
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-portfolio/realtime"
)

// Hub fans a topic signal out to every listener. Each listener runs on its own
// goroutine so Publish never blocks on a slow listener.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]map[string]func()
}

var _ realtime.Broadcaster = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[string]func())}
}

func (h *Hub) Publish(_ context.Context, topic string) error {
	h.Signal(topic)
	return nil
}

// Signal notifies the listeners of topic.
func (h *Hub) Signal(topic string) {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.listeners[topic]))
	for _, fn := range h.listeners[topic] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		go fn()
	}
}

func (h *Hub) Listen(topic string, fn func()) (cancel func()) {
	id := uuid.NewString()

	h.mu.Lock()
	if _, ok := h.listeners[topic]; !ok {
		h.listeners[topic] = make(map[string]func())
	}
	h.listeners[topic][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners[topic], id)
			if len(h.listeners[topic]) == 0 {
				delete(h.listeners, topic)
			}
		})
	}
}

// Listeners returns the number of listeners on topic.
func (h *Hub) Listeners(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[topic])
}
