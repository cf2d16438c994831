package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/pongenv/internal/game"
	"github.com/redis/go-redis/v9"
)

// Attach wires session events into the hub. With Redis the hub subscribes to
// the shared session_events channel, so spectators on any instance see every
// session; without it the manager delivers events in-process.
func Attach(ctx context.Context, h *Hub, sm *game.SessionManager, rdb *redis.Client) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; using in-process session events")
		sm.AddListener(h.Dispatch)
		return
	}
	StartEventSubscriber(ctx, h, rdb)
}

// StartEventSubscriber subscribes to session_events and forwards each event
// to the session's spectators
func StartEventSubscriber(ctx context.Context, h *Hub, rdb *redis.Client) {
	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.EventsChannel)
		for msg := range ch {
			var ev game.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			h.dispatchRaw(ev, []byte(msg.Payload))
		}
	}()
}

// Dispatch forwards one event to the spectators of its session
func (h *Hub) Dispatch(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WS] Error marshaling %s event: %v", ev.Type, err)
		return
	}
	h.dispatchRaw(ev, data)
}

func (h *Hub) dispatchRaw(ev game.Event, data []byte) {
	if ev.SessionID == "" {
		return
	}
	h.broadcastRaw(ev.SessionID, data)

	switch ev.Type {
	case game.EventSessionClosed, game.EventSessionExpired:
		if n := h.RoomSize(ev.SessionID); n > 0 {
			log.Printf("[WS] %s for %s; disconnecting %d spectators", ev.Type, ev.SessionID, n)
		}
		h.closeRoom(ev.SessionID)
	}
}
