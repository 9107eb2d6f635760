package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coderjudith/va-portfolio-chat/internal/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

// Client owns one websocket connection: a read pump that feeds inbound
// envelopes to the relay and a write pump that drains the send channel.
// It is the relay's Sender for this connection id.
type Client struct {
	id    string
	conn  *websocket.Conn
	relay *chat.Relay

	send chan chat.Envelope
	done chan struct{}
	once sync.Once
}

func newClient(id string, conn *websocket.Conn, relay *chat.Relay) *Client {
	return &Client{
		id:    id,
		conn:  conn,
		relay: relay,
		send:  make(chan chat.Envelope, sendBuffer),
		done:  make(chan struct{}),
	}
}

// Send queues one outbound event. Delivery is best-effort: a closed
// connection or a full buffer drops the frame.
func (c *Client) Send(event string, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal %s payload for %s: %v", event, c.id, err)
		return
	}
	env := chat.Envelope{Event: event, Data: b}
	select {
	case <-c.done:
	case c.send <- env:
	default:
		log.Printf("send buffer full, dropping %s for %s", event, c.id)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.relay.Disconnect(c.id)
		c.close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket closed unexpectedly for %s: %v", c.id, err)
			}
			return
		}
		var env chat.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.Send(chat.EventError, chat.ErrorData{Text: "Invalid message format. Send JSON with an 'event' field."})
			continue
		}
		c.relay.Dispatch(c.id, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
