package live

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans session snapshots out to websocket viewers. With a Redis client
// configured, snapshots are also published so viewers connected to other
// instances receive them.
type Hub struct {
	redis   *redis.Client
	viewers map[string]map[*Viewer]struct{}
	mu      sync.RWMutex
}

// Viewer is one websocket consumer of a session's snapshot stream.
type Viewer struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		viewers: map[string]map[*Viewer]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(sessionID string) *Viewer {
	viewer := &Viewer{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.viewers[sessionID] == nil {
		h.viewers[sessionID] = map[*Viewer]struct{}{}
	}
	h.viewers[sessionID][viewer] = struct{}{}
	return viewer
}

func (h *Hub) Unregister(viewer *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionViewers, ok := h.viewers[viewer.SessionID]; ok {
		delete(sessionViewers, viewer)
		if len(sessionViewers) == 0 {
			delete(h.viewers, viewer.SessionID)
		}
	}
	close(viewer.Send)
}

// Broadcast delivers a payload to every viewer of the session. Slow viewers
// are skipped rather than blocking the engine's snapshot path.
func (h *Hub) Broadcast(sessionID string, payload []byte) {
	h.mu.RLock()
	viewers := h.viewers[sessionID]
	h.mu.RUnlock()

	for viewer := range viewers {
		select {
		case viewer.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(sessionID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "runs:*:live")
	defer pubsub.Close()

	// Pattern messages carry the concrete channel name.
	for msg := range pubsub.Channel() {
		sessionID := sessionIDFromChannel(msg.Channel)
		h.mu.RLock()
		viewers := h.viewers[sessionID]
		h.mu.RUnlock()
		for viewer := range viewers {
			select {
			case viewer.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func redisChannel(sessionID string) string {
	return "runs:" + sessionID + ":live"
}

func sessionIDFromChannel(ch string) string {
	// runs:{session}:live
	const prefix = "runs:"
	const suffix = ":live"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
