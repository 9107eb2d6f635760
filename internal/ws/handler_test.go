package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/coderjudith/va-portfolio-chat/internal/chat"
)

func requestWithOrigin(origin string) *http.Request {
	r, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOriginAllowList(t *testing.T) {
	relay := chat.NewRelay(chat.Options{})
	h := NewHandler(relay, []string{"http://localhost:3000", "https://widget.example.com"})

	if !h.checkOrigin(requestWithOrigin("http://localhost:3000")) {
		t.Fatal("listed origin rejected")
	}
	if h.checkOrigin(requestWithOrigin("https://evil.example.com")) {
		t.Fatal("unlisted origin accepted")
	}
	// Non-browser clients send no Origin header and always pass.
	if !h.checkOrigin(requestWithOrigin("")) {
		t.Fatal("missing origin rejected")
	}
}

func TestCheckOriginEmptyListAllowsAll(t *testing.T) {
	relay := chat.NewRelay(chat.Options{})
	h := NewHandler(relay, nil)
	if !h.checkOrigin(requestWithOrigin("https://anywhere.example.com")) {
		t.Fatal("empty allow-list should accept any origin")
	}
}

func dialTestServer(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	relay := chat.NewRelay(chat.Options{})
	h := NewHandler(relay, nil)

	engine := gin.New()
	engine.GET("/ws", h.Serve)
	srv := httptest.NewServer(engine)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) chat.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env chat.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func TestUpgradeSendsConnectedFrame(t *testing.T) {
	conn, cleanup := dialTestServer(t)
	defer cleanup()

	env := readEnvelope(t, conn)
	if env.Event != chat.EventConnected {
		t.Fatalf("first frame event = %q, want %q", env.Event, chat.EventConnected)
	}
	var d chat.ConnectedData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("bad connected payload %s: %v", env.Data, err)
	}
	if d.ConnectionID == "" {
		t.Fatal("connected frame carries no connection id")
	}
}

func TestMalformedFramesGetErrorReply(t *testing.T) {
	conn, cleanup := dialTestServer(t)
	defer cleanup()

	if env := readEnvelope(t, conn); env.Event != chat.EventConnected {
		t.Fatalf("first frame event = %q, want %q", env.Event, chat.EventConnected)
	}

	// Not JSON at all.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := readEnvelope(t, conn)
	if env.Event != chat.EventError {
		t.Fatalf("event = %q, want %q", env.Event, chat.EventError)
	}
	var d chat.ErrorData
	if err := json.Unmarshal(env.Data, &d); err != nil || d.Text == "" {
		t.Fatalf("error payload = %s, %v", env.Data, err)
	}

	// Valid JSON but no event field is rejected the same way.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"data":{}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if env := readEnvelope(t, conn); env.Event != chat.EventError {
		t.Fatalf("event = %q, want %q", env.Event, chat.EventError)
	}
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	relay := chat.NewRelay(chat.Options{})
	c := newClient("conn-1", nil, relay)

	for i := 0; i < sendBuffer; i++ {
		c.Send(chat.EventMessage, chat.MessageDelivery{})
	}
	if len(c.send) != sendBuffer {
		t.Fatalf("buffered %d frames, want %d", len(c.send), sendBuffer)
	}

	// No write pump is draining: the next frame must be dropped without
	// blocking the relay.
	done := make(chan struct{})
	go func() {
		c.Send(chat.EventMessage, chat.MessageDelivery{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full buffer")
	}
	if len(c.send) != sendBuffer {
		t.Fatalf("overflow frame was queued: %d buffered", len(c.send))
	}
}
