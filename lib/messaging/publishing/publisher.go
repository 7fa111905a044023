package publishing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"threepole/lib/monitoring/tracker_metrics"
	"threepole/lib/utils/logging"
)

const DefaultBufferSize = 32

var ErrSubscriberFull = errors.New("subscriber buffer full")

// Hub fans published messages out to every subscriber. Publishing never
// blocks: a subscriber whose buffer is full misses the message.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan Message
	nextId      int
	bufferSize  int
	logger      logging.Logger
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subscribers: make(map[int]chan Message),
		bufferSize:  bufferSize,
		logger:      logging.NewLogger("EVENT_HUB"),
	}
}

// PublishMessage publishes body as JSON on route
func (h *Hub) PublishMessage(route string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return h.PublishRawMessage(route, jsonBody)
}

// PublishRawMessage publishes an already encoded JSON body on route
func (h *Hub) PublishRawMessage(route string, body []byte) error {
	msg := Message{Route: route, Body: body}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			tracker_metrics.EventsDropped.WithLabelValues(route).Inc()
			h.logger.Warn("EVENT_DROPPED", ErrSubscriberFull, map[string]any{
				logging.EVENT:      route,
				logging.SUBSCRIBER: id,
			})
		}
	}
	return nil
}

// Subscribe registers a new subscriber. The returned func unsubscribes and
// closes the channel; calling it more than once is a no-op.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, h.bufferSize)

	h.mu.Lock()
	id := h.nextId
	h.nextId++
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
