package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/coderjudith/va-portfolio-chat/internal/chat"
)

// Handler upgrades HTTP requests to websocket sessions and binds each one
// to a fresh connection id on the relay.
type Handler struct {
	relay          *chat.Relay
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
}

func NewHandler(relay *chat.Relay, allowedOrigins []string) *Handler {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	h := &Handler{relay: relay, allowedOrigins: origins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // allow non-browser clients
	}
	return h.allowedOrigins[origin]
}

// Serve is the gin handler for the /ws route. It runs the read pump on the
// request goroutine; the handler returns when the connection closes.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	connID := uuid.NewString()
	client := newClient(connID, conn, h.relay)
	h.relay.Connect(connID, client)

	go client.writePump()
	client.Send(chat.EventConnected, chat.ConnectedData{ConnectionID: connID})
	client.readPump()
}
