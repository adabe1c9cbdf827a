package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type control struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// RegisterRoutes exposes the websocket endpoint. Clients pick event
// channels with {"action":"subscribe","channel":"..."} frames and shed
// them with "unsubscribe"; everything else is ignored.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := hub.Register()

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			var ctl control
			if err := c.ReadJSON(&ctl); err != nil {
				break
			}
			switch ctl.Action {
			case "subscribe":
				if ctl.Channel != "" {
					hub.Subscribe(client, ctl.Channel)
				}
			case "unsubscribe":
				if ctl.Channel != "" {
					hub.Unsubscribe(client, ctl.Channel)
				}
			}
		}

		// closing Send drains the writer before the conn goes away
		hub.Unregister(client)
		<-done
	}))
}
