package ws

import (
	"context"
	"sync"
	"time"

	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/pkg/platform"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var connectedClients = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "themeforge_ws_clients",
		Help: "Connected broadcast channel clients.",
	},
	[]string{"channel"},
)

func init() {
	prometheus.MustRegister(connectedClients)
}

const clientBuffer = 256

// Client represents a connected WebSocket client.
type Client struct {
	conn    *websocket.Conn
	userID  string
	channel string
	send    chan realtime.Update
	logger  *zap.Logger
}

type channelClients struct {
	clients     map[*Client]struct{}
	unsubscribe func()
}

// Hub tracks clients per broadcast channel. The first client on a channel
// subscribes the hub to that channel's bus topic; the last one leaving
// unsubscribes it.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*channelClients
	bus      platform.Subscriber
	logger   *zap.Logger
}

// NewHub creates a hub fed from bus. A nil bus gives a hub that only
// delivers explicit Broadcast calls.
func NewHub(bus platform.Subscriber, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		channels: make(map[string]*channelClients),
		bus:      bus,
		logger:   logger,
	}
}

// Register adds a client to its channel.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	cc, ok := h.channels[c.channel]
	if !ok {
		cc = &channelClients{clients: make(map[*Client]struct{})}
		h.channels[c.channel] = cc
		if h.bus != nil {
			channel := c.channel
			cc.unsubscribe = h.bus.Subscribe(realtime.TopicFor(channel), func(_ context.Context, ev platform.Event) {
				if u, ok := updateFromEvent(ev); ok {
					h.Broadcast(channel, u)
				}
			})
		}
	}
	cc.clients[c] = struct{}{}
	h.mu.Unlock()

	connectedClients.WithLabelValues(c.channel).Inc()
	h.logger.Debug("websocket client connected",
		zap.String("user_id", c.userID),
		zap.String("channel", c.channel),
	)
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	cc, ok := h.channels[c.channel]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := cc.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(cc.clients, c)
	close(c.send)
	if len(cc.clients) == 0 {
		delete(h.channels, c.channel)
		if cc.unsubscribe != nil {
			cc.unsubscribe()
		}
	}
	h.mu.Unlock()

	connectedClients.WithLabelValues(c.channel).Dec()
	h.logger.Debug("websocket client disconnected",
		zap.String("user_id", c.userID),
		zap.String("channel", c.channel),
	)
}

// Broadcast sends u to every client on channel. Slow clients miss updates
// rather than stall the sender.
func (h *Hub) Broadcast(channel string, u realtime.Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cc, ok := h.channels[channel]
	if !ok {
		return
	}
	for c := range cc.clients {
		select {
		case c.send <- u:
		default:
			h.logger.Warn("client send buffer full, dropping update",
				zap.String("user_id", c.userID),
				zap.String("channel", channel),
			)
		}
	}
}

// ClientCount returns the number of clients on channel, or on every channel
// when channel is empty.
func (h *Hub) ClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if channel != "" {
		if cc, ok := h.channels[channel]; ok {
			return len(cc.clients)
		}
		return 0
	}
	n := 0
	for _, cc := range h.channels {
		n += len(cc.clients)
	}
	return n
}

func updateFromEvent(ev platform.Event) (realtime.Update, bool) {
	switch p := ev.Payload.(type) {
	case realtime.Update:
		return p, true
	case *realtime.Update:
		if p != nil {
			return *p, true
		}
	}
	return realtime.Update{}, false
}

// writePump sends updates from the client's send channel to the WebSocket.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-c.send:
			if !ok {
				// Channel closed by hub (unregister).
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, c.conn, u)
			cancel()
			if err != nil {
				c.logger.Debug("websocket write error", zap.Error(err))
				return
			}
		}
	}
}

// readPump drains client frames until the connection closes. Clients do not
// send anything meaningful.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}
