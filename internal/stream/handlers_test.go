package stream

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil))

	req := httptest.NewRequest(http.MethodGet, "/stream/ws", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

func TestStreamHandlersSubscribeBroadcast(t *testing.T) {
	hub := NewHub(nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() { _ = app.Shutdown() }()

	wsURL := "ws://" + ln.Addr().String() + "/stream/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	sub := control{Action: "subscribe", Channel: ChannelRunnerLocation}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe error: %v", err)
	}

	// give the server a moment to process the subscribe frame
	time.Sleep(20 * time.Millisecond)
	hub.Broadcast(ChannelRunnerLocation, []byte(`{"raceId":"r1"}`))

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if env.Channel != ChannelRunnerLocation {
		t.Fatalf("unexpected channel: %s", env.Channel)
	}
	var payload struct {
		RaceID string `json:"raceId"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RaceID != "r1" {
		t.Fatalf("unexpected payload: %s", env.Data)
	}

	unsub := control{Action: "unsubscribe", Channel: ChannelRunnerLocation}
	if err := conn.WriteJSON(unsub); err != nil {
		t.Fatalf("unsubscribe error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	hub.Broadcast(ChannelRunnerLocation, []byte(`{}`))

	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := conn.ReadJSON(&env); err == nil {
		t.Fatalf("expected no frame after unsubscribe")
	}
}
