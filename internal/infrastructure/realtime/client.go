package realtime

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	defaultSendBuffer = 64
)

var clientSeq atomic.Uint64

// Client is one websocket subscriber. Messages queue in send and are
// written by WritePump.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *logging.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, buffer int, logger *logging.Logger) *Client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Client{
		id:     clientSeq.Add(1),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, buffer),
		logger: logger,
	}
}

func (c *Client) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(msgType, topic string, data any) {
	raw, err := encode(Envelope{Type: msgType, Topic: topic, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		c.logger.Warn("encode reply failed", "client_id", c.id, "error", err)
		return
	}
	c.enqueue(raw)
}

// ReadPump handles join/leave commands until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Remove(c)
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "client_id", c.id, "error", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var cmd Command
	if err := sonic.Unmarshal(raw, &cmd); err != nil {
		c.reply(TypeError, "", map[string]string{"message": "invalid command payload"})
		return
	}

	topic := strings.TrimSpace(cmd.Topic)
	if !ValidTopic(topic) {
		c.reply(TypeError, topic, map[string]string{"message": "unknown topic"})
		return
	}

	switch strings.ToLower(strings.TrimSpace(cmd.Action)) {
	case "join":
		c.hub.Subscribe(c, topic)
		c.reply(TypeJoined, topic, nil)
	case "leave":
		c.hub.Unsubscribe(c, topic)
		c.reply(TypeLeft, topic, nil)
	default:
		c.reply(TypeError, topic, map[string]string{"message": "action must be join or leave"})
	}
}

// WritePump drains send to the socket and keeps the connection alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", "client_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades GET requests to websocket subscribers of hub.
type Handler struct {
	hub        *Hub
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     *logging.Logger
}

func NewHandler(hub *Hub, allowedOrigins []string, sendBuffer int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		sendBuffer: sendBuffer,
		logger:     logger.Named("realtime"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := newClient(h.hub, conn, h.sendBuffer, h.logger)
	h.logger.DebugContext(r.Context(), "websocket subscriber connected", "client_id", c.id, "remote_addr", r.RemoteAddr)

	go c.WritePump()
	go c.ReadPump()
}

// originChecker allows requests without an Origin header and those whose
// origin is listed; "*" allows everything.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		candidate := strings.TrimSpace(origin)
		if candidate == "*" {
			allowAll = true
			continue
		}
		if candidate != "" {
			allowed[candidate] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
