package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"voteflow/internal/shared/events"

	"github.com/google/uuid"
)

const (
	defaultBufferSize = 64
	WelcomeText       = "Welcome!"
)

var (
	ErrHubClosed     = errors.New("broadcast hub closed")
	ErrUnknownClient = errors.New("broadcast client not connected")
	ErrEmptyTopic    = errors.New("broadcast topic is required")
)

// Metrics observes hub membership and delivery.
type Metrics interface {
	ClientsConnected(n int)
	FrameDropped(topic string)
}

type Options struct {
	BufferSize int
	Metrics    Metrics
	Logger     *slog.Logger
}

// Client is one live connection. Frames queued for it are drained by the
// transport through Frames; the channel closes on disconnect.
type Client struct {
	ID     string
	send   chan []byte
	topics map[string]struct{}
}

func (c *Client) Frames() <-chan []byte {
	return c.send
}

// Hub is the topic registry of the live channel. Membership changes take the
// write lock; publish holds the read lock while it queues, so a client's
// channel is never closed under a sender.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	closed  bool

	bufferSize int
	metrics    Metrics
	logger     *slog.Logger
}

func NewHub(opts Options) *Hub {
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		topics:     make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
		bufferSize: bufferSize,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Connect registers a client and queues the welcome frame for it alone.
func (h *Hub) Connect() (*Client, error) {
	welcome, err := events.EncodeValue(events.EventMessage, events.MessageData{Text: WelcomeText})
	if err != nil {
		return nil, err
	}
	client := &Client{
		ID:     uuid.NewString(),
		send:   make(chan []byte, h.bufferSize),
		topics: make(map[string]struct{}),
	}
	client.send <- welcome

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.clients[client] = struct{}{}
	connected := len(h.clients)
	h.mu.Unlock()

	h.observeClients(connected)
	h.logger.Info("live client connected",
		"event", "broadcast_client_connected",
		"module", "internal/platform/broadcast",
		"layer", "platform",
		"client_id", client.ID,
		"clients", connected,
	)
	return client, nil
}

// Subscribe adds client to topic. Subscribing twice is a no-op.
func (h *Hub) Subscribe(client *Client, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return ErrUnknownClient
	}
	members, ok := h.topics[topic]
	if !ok {
		members = make(map[*Client]struct{})
		h.topics[topic] = members
	}
	members[client] = struct{}{}
	client.topics[topic] = struct{}{}

	h.logger.Debug("live client subscribed",
		"event", "broadcast_client_subscribed",
		"module", "internal/platform/broadcast",
		"layer", "platform",
		"client_id", client.ID,
		"topic", topic,
	)
	return nil
}

// UnsubscribeAll removes client from every topic but keeps it connected.
func (h *Hub) UnsubscribeAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeAllLocked(client)
}

// Disconnect unsubscribes client everywhere and closes its frame channel.
func (h *Hub) Disconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	h.unsubscribeAllLocked(client)
	delete(h.clients, client)
	close(client.send)
	connected := len(h.clients)
	h.mu.Unlock()

	h.observeClients(connected)
	h.logger.Info("live client disconnected",
		"event", "broadcast_client_disconnected",
		"module", "internal/platform/broadcast",
		"layer", "platform",
		"client_id", client.ID,
		"clients", connected,
	)
}

// Publish queues one frame for every current subscriber of topic and returns
// how many received it. Subscribers with a full buffer miss the frame; late
// subscribers never see it.
func (h *Hub) Publish(ctx context.Context, topic string, event string, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	frame, err := events.Encode(event, data)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0, ErrHubClosed
	}
	delivered := 0
	for client := range h.topics[topic] {
		select {
		case client.send <- frame:
			delivered++
		default:
			if h.metrics != nil {
				h.metrics.FrameDropped(topic)
			}
			h.logger.Warn("dropping frame for slow client",
				"event", "broadcast_publish_drop",
				"module", "internal/platform/broadcast",
				"layer", "platform",
				"client_id", client.ID,
				"topic", topic,
			)
		}
	}
	return delivered, nil
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects further connections.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for client := range h.clients {
		h.unsubscribeAllLocked(client)
		close(client.send)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
	h.observeClients(0)
}

func (h *Hub) unsubscribeAllLocked(client *Client) {
	for topic := range client.topics {
		if members, ok := h.topics[topic]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	client.topics = make(map[string]struct{})
}

func (h *Hub) observeClients(n int) {
	if h.metrics != nil {
		h.metrics.ClientsConnected(n)
	}
}
