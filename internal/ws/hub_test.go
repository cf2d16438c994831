package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/pong"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub()
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		if err := h.Serve(w, r, id, map[string]string{"type": "hello", "session_id": id}); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForRoom(t *testing.T, h *Hub, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.RoomSize(sessionID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("room %s never reached size %d (have %d)", sessionID, n, h.RoomSize(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func TestSpectatorReceivesInitialAndEvents(t *testing.T) {
	h, srv := startHub(t)
	conn := dial(t, srv, "sess_a")
	other := dial(t, srv, "sess_b")
	waitForRoom(t, h, "sess_a", 1)
	waitForRoom(t, h, "sess_b", 1)

	var hello map[string]string
	readJSON(t, conn, &hello)
	if hello["type"] != "hello" || hello["session_id"] != "sess_a" {
		t.Fatalf("unexpected initial message %v", hello)
	}
	readJSON(t, other, &hello)

	snap := pong.Snapshot{Ball: pong.Ball{X: 12, Y: 34}}
	h.Dispatch(game.Event{Type: game.EventStep, SessionID: "sess_a", Snapshot: &snap})

	var ev game.Event
	readJSON(t, conn, &ev)
	if ev.Type != game.EventStep || ev.Snapshot == nil || ev.Snapshot.Ball.X != 12 {
		t.Errorf("unexpected event %+v", ev)
	}

	// The other room must not see sess_a's traffic.
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("spectator of sess_b received an event for sess_a")
	}
}

func TestSessionCloseDisconnectsSpectators(t *testing.T) {
	h, srv := startHub(t)
	conn := dial(t, srv, "sess_c")
	waitForRoom(t, h, "sess_c", 1)

	var hello map[string]string
	readJSON(t, conn, &hello)

	h.Dispatch(game.Event{Type: game.EventSessionClosed, SessionID: "sess_c"})

	var ev game.Event
	readJSON(t, conn, &ev)
	if ev.Type != game.EventSessionClosed {
		t.Errorf("expected session_closed, got %s", ev.Type)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close")
	}
	if h.RoomSize("sess_c") != 0 {
		t.Errorf("room should be empty")
	}
}

func TestAttachInProcess(t *testing.T) {
	h, srv := startHub(t)
	sm := game.NewSessionManager(nil, nil, &config.Config{}, pong.DefaultParams())
	Attach(context.Background(), h, sm, nil)

	seed := int64(9)
	view, _, _, err := sm.Create(&seed, "")
	if err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv, view.ID)
	waitForRoom(t, h, view.ID, 1)
	var hello map[string]string
	readJSON(t, conn, &hello)

	if _, err := sm.Step(view.ID, pong.ActionDown); err != nil {
		t.Fatal(err)
	}
	var ev game.Event
	readJSON(t, conn, &ev)
	if ev.Type != game.EventStep || ev.Step == nil {
		t.Fatalf("expected a step event, got %+v", ev)
	}
	if ev.Snapshot.Episode.Frame != 1 {
		t.Errorf("expected frame 1, got %d", ev.Snapshot.Episode.Frame)
	}
}
