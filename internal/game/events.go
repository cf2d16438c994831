package game

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/playmatatu/pongenv/internal/pong"
)

// EventsChannel is the Redis pub/sub channel session events are published on
const EventsChannel = "session_events"

// Event is a session lifecycle notification for spectators
type Event struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id"`
	Episode   int              `json:"episode,omitempty"`
	Snapshot  *pong.Snapshot   `json:"snapshot,omitempty"`
	Step      *pong.StepResult `json:"step,omitempty"`
	Summary   *EpisodeSummary  `json:"summary,omitempty"`
	At        time.Time        `json:"at"`
}

// publish sends ev to Redis when configured, otherwise to in-process listeners
func (sm *SessionManager) publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = sm.now()
	}

	if sm.rdb != nil {
		b, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[REDIS] Failed to marshal %s event for %s: %v", ev.Type, ev.SessionID, err)
			return
		}
		if err := sm.rdb.Publish(context.Background(), EventsChannel, b).Err(); err != nil {
			log.Printf("[REDIS] Failed to publish %s event for %s: %v", ev.Type, ev.SessionID, err)
		}
		return
	}

	sm.mu.RLock()
	listeners := append([]func(Event)(nil), sm.listeners...)
	sm.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
