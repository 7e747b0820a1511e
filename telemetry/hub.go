package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// writeTimeout bounds how long a single broadcast write may block a slow
// connection before the hub gives up on it for this event.
const writeTimeout = 2 * time.Second

// connRateLimit and connRateBurst throttle how many events a single
// connection can receive per second, so one chatty node can't flood an
// observer's socket.
const (
	connRateLimit = 20
	connRateBurst = 40
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is a websocket.Upgrader-backed Sink: every connected observer
// receives every event broadcast to it, each throttled by its own rate
// limiter. It mirrors the broadcast-to-all-sockets shape of a plain
// WebSocket telemetry server, minus any request/response protocol — this
// is a one-way event firehose.
type Hub struct {
	log *zap.Logger

	mu    sync.Mutex
	conns map[*hubConn]struct{}
}

type hubConn struct {
	ws      *websocket.Conn
	limiter *rate.Limiter
	writeMu sync.Mutex
}

// NewHub constructs an empty Hub. log may be nil for a no-op logger.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:   log,
		conns: make(map[*hubConn]struct{}),
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers it as an
// observer until the connection closes. It accepts no inbound messages;
// its sole purpose is outbound event delivery.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &hubConn{
		ws:      ws,
		limiter: rate.NewLimiter(rate.Limit(connRateLimit), connRateBurst),
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	h.log.Info("telemetry observer connected", zap.String("remote", r.RemoteAddr))

	// Drain and discard anything the observer sends; reading processes the
	// connection's control frames and detects disconnects.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *hubConn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.ws.Close()
	h.log.Info("telemetry observer disconnected")
}

// Broadcast sends evt to every connected observer that hasn't exceeded its
// rate limit; a write to a stalled or over-limit connection is skipped
// rather than allowed to block the whole broadcast.
func (h *Hub) Broadcast(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("failed to marshal telemetry event", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*hubConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if !c.limiter.Allow() {
			h.log.Warn("dropping telemetry event for rate-limited observer", zap.String("eventId", evt.EventID))
			continue
		}
		go h.write(c, payload)
	}
}

func (h *Hub) write(c *hubConn, payload []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Warn("dropping telemetry observer after write failure", zap.Error(err))
		h.remove(c)
	}
}
