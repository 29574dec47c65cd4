package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/opsboard/internal/events"
)

// AllDeployments is the topic that receives every deployment event.
const AllDeployments = ""

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by topic.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

type message struct {
	topics  []string
	payload []byte
}

type subscription struct {
	topic  string
	client Subscriber
}

// NewHub creates an initialized Hub and starts its dispatch loop.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
		done:      make(chan struct{}),
		logger:    logger.With(slog.String("component", "stream_hub")),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case sub := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[sub.topic]; !ok {
				h.clients[sub.topic] = make(map[Subscriber]struct{})
			}
			h.clients[sub.topic][sub.client] = struct{}{}
			h.mu.Unlock()
		case sub := <-h.unreg:
			h.mu.Lock()
			h.remove(sub.topic, sub.client)
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for _, topic := range msg.topics {
				for c := range h.clients[topic] {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						h.remove(topic, c)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(topic string, client Subscriber) {
	clients, ok := h.clients[topic]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, topic)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, clients := range h.clients {
		for c := range clients {
			c.Close()
		}
		delete(h.clients, topic)
	}
}

// Register adds a client to a topic. It is a no-op once the hub is closed.
func (h *Hub) Register(topic string, client Subscriber) {
	select {
	case h.register <- subscription{topic: topic, client: client}:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(topic string, client Subscriber) {
	select {
	case h.unreg <- subscription{topic: topic, client: client}:
	case <-h.done:
	}
}

// Broadcast sends payload to every client of the given topics.
func (h *Hub) Broadcast(payload []byte, topics ...string) {
	select {
	case h.broadcast <- message{topics: topics, payload: payload}:
	case <-h.done:
	}
}

// Subscribers returns the number of registered clients across all topics.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// Close disconnects every client and stops the dispatch loop.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleEvent implements events.EventHandler by broadcasting the JSON-encoded
// event to the all-deployments topic and to the deployment's own topic.
func (h *Hub) HandleEvent(_ context.Context, event *events.DeploymentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode deployment event: %w", err)
	}

	topics := []string{AllDeployments}
	if event.Deployment != nil {
		topics = append(topics, event.Deployment.ID.String())
	}
	h.Broadcast(payload, topics...)
	return nil
}
