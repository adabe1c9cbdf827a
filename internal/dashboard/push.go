package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"marathon-admin/internal/stream"

	"github.com/gorilla/websocket"
)

// PushEvent is one frame received from the push transport, still
// carrying its raw payload; the controller decodes per channel.
type PushEvent struct {
	Channel string
	Data    json.RawMessage
}

// PushClient consumes the backend's websocket stream. Events are
// delivered on a single channel in arrival order; the channel closes
// when the connection drops or Close is called.
type PushClient struct {
	conn      *websocket.Conn
	events    chan PushEvent
	done      chan struct{}
	closeOnce sync.Once
}

func ConnectPush(ctx context.Context, wsURL string) (*PushClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting push transport: %w", err)
	}

	p := &PushClient{
		conn:   conn,
		events: make(chan PushEvent, 64),
		done:   make(chan struct{}),
	}
	go p.readLoop()
	return p, nil
}

func (p *PushClient) Subscribe(channel string) error {
	return p.writeControl("subscribe", channel)
}

func (p *PushClient) Unsubscribe(channel string) error {
	return p.writeControl("unsubscribe", channel)
}

func (p *PushClient) writeControl(action, channel string) error {
	frame := struct {
		Action  string `json:"action"`
		Channel string `json:"channel"`
	}{Action: action, Channel: channel}
	if err := p.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("%s %s: %w", action, channel, err)
	}
	return nil
}

func (p *PushClient) Events() <-chan PushEvent {
	return p.events
}

func (p *PushClient) readLoop() {
	defer close(p.events)
	for {
		var env stream.Envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Channel == "" {
			continue
		}
		// done unblocks the send when the consumer stopped draining
		// before the buffer emptied
		select {
		case p.events <- PushEvent{Channel: env.Channel, Data: env.Data}:
		case <-p.done:
			return
		}
	}
}

func (p *PushClient) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	deadline := time.Now().Add(time.Second)
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return p.conn.Close()
}
