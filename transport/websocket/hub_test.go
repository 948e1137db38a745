package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mazeveil/echomaze/game/engine"
)

func testState() *engine.GameState {
	return &engine.GameState{
		PlayerPos:  engine.Position{Row: 5, Col: 3},
		Turn:       engine.TurnPlayer,
		Phase:      engine.PhaseRolling,
		Status:     engine.StatusPlaying,
		EchoCharge: 2,
		Message:    "Your move.",
		ConfigName: "Default",
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.sessions == nil {
		t.Error("sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "ab12",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.sessions["ab12"][client] {
		t.Error("client was not registered in session")
	}
	if len(hub.sessions["ab12"]) != 1 {
		t.Errorf("expected 1 client in session, got %d", len(hub.sessions["ab12"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "ab12",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["ab12"]; exists {
		t.Error("session should be cleaned up after last client unregisters")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "cd34"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("expected 1 client remaining, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestBroadcastStateDeliversToSessionClients(t *testing.T) {
	hub := NewHub()
	sessionID := "ef56"

	client := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	hub.registerClient(client)

	// Deliver the queued message on this goroutine instead of Run.
	hub.BroadcastState(sessionID, testState())
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("SessionID = %q, want %q", message.SessionID, sessionID)
		}
		if message.Event != "state_update" {
			t.Errorf("Event = %q, want state_update", message.Event)
		}
		if message.GameState.PlayerPos != (engine.Position{Row: 5, Col: 3}) {
			t.Errorf("PlayerPos = %+v", message.GameState.PlayerPos)
		}
	default:
		t.Fatal("no message delivered to client")
	}
}

func TestBroadcastStateDoesNotBlock(t *testing.T) {
	hub := NewHub()

	// No Run goroutine and a full queue: calls must still return.
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		done := make(chan struct{})
		go func() {
			hub.BroadcastState("gh78", testState())
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("BroadcastState blocked")
		}
	}
}

func TestWebSocketUpgradeAndLifecycle(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws01"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	hub.BroadcastState("ws01", testState())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if message.GameState == nil || message.GameState.Status != engine.StatusPlaying {
		t.Errorf("unexpected state payload: %+v", message.GameState)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond)
	// The registered-client map lives on the Run goroutine; reaching in here
	// after the close races with it, so lifecycle cleanup is asserted
	// indirectly: a second broadcast must not panic on a closed channel.
	hub.BroadcastState("ws01", testState())
	time.Sleep(20 * time.Millisecond)
}
