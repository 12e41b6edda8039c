package realtime

import (
	"sync"

	"github.com/riskibarqy/league-live/internal/platform/logging"
)

// Hub routes encoded messages to the subscribers of a topic. A subscriber
// whose buffer is full misses the message; Publish never waits on one.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
	logger *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		logger: logger.Named("realtime.hub"),
	}
}

func (h *Hub) Subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unsubscribeLocked(c, topic)
}

// Remove drops c from every topic.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic := range h.topics {
		h.unsubscribeLocked(c, topic)
	}
}

func (h *Hub) unsubscribeLocked(c *Client, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish hands message to every subscriber of topic and reports how many
// accepted it.
func (h *Hub) Publish(topic string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.topics[topic] {
		if c.enqueue(message) {
			delivered++
			continue
		}
		h.logger.Debug("subscriber buffer full, message skipped", "topic", topic, "client_id", c.id)
	}
	return delivered
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.topics[topic])
}
