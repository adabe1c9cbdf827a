package stream

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Event channels pushed to connected dashboards.
const (
	ChannelRunnerLocation = "runner-location"
	ChannelRaceCompleted  = "race-completed"
	ChannelAnnouncement   = "announcement"
)

// Envelope is the frame written to websocket subscribers.
type Envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Hub fans event payloads out to websocket clients by channel name.
// With redis configured, broadcasts travel through pub/sub so every API
// instance delivers to its own clients; without redis, fan-out is local.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Send chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register() *Client {
	return &Client{Send: make(chan []byte, 64)}
}

func (h *Hub) Subscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[channel] == nil {
		h.clients[channel] = map[*Client]struct{}{}
	}
	h.clients[channel][client] = struct{}{}
}

func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client, channel)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel := range h.clients {
		h.dropLocked(client, channel)
	}
	close(client.Send)
}

func (h *Hub) dropLocked(client *Client, channel string) {
	if subscribers, ok := h.clients[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.clients, channel)
		}
	}
}

// Broadcast wraps data in the channel envelope and delivers it. The
// payload must already be JSON.
func (h *Hub) Broadcast(channel string, data []byte) {
	frame, err := json.Marshal(Envelope{Channel: channel, Data: data})
	if err != nil {
		log.Printf("stream envelope marshal error: %v", err)
		return
	}

	if h.redis != nil {
		if err := h.redis.Publish(context.Background(), redisChannel(channel), frame).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
		}
		return
	}
	h.deliver(channel, frame)
}

func (h *Hub) deliver(channel string, frame []byte) {
	// the whole delivery runs under the read lock: the inner map
	// mutates on every subscribe/unsubscribe, and Unregister closes
	// Send under the write lock, so neither may interleave with the
	// iteration or the sends. Sends never block, slow clients drop.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[channel] {
		select {
		case client.Send <- frame:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "dashboard:*:broadcast")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		channel := channelFromRedis(msg.Channel)
		if channel == "" {
			continue
		}
		h.deliver(channel, []byte(msg.Payload))
	}
}

func redisChannel(channel string) string {
	return "dashboard:" + channel + ":broadcast"
}

func channelFromRedis(ch string) string {
	// dashboard:{channel}:broadcast
	const prefix = "dashboard:"
	const suffix = ":broadcast"
	if !strings.HasPrefix(ch, prefix) || !strings.HasSuffix(ch, suffix) || len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
