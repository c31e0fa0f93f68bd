// Package ws serves broadcast channels to WebSocket clients.
package ws

import (
	"net/http"

	"github.com/HerbHall/themeforge/internal/auth"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/server"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const maxChannelLen = 64

// Handler upgrades GET /api/v1/ws/{channel} and streams the channel's updates.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenService
	logger *zap.Logger
}

var _ server.RouteRegistrar = (*Handler)(nil)

// NewHandler creates a WebSocket handler. A nil tokens service accepts
// anonymous clients.
func NewHandler(hub *Hub, tokens *auth.TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, tokens: tokens, logger: logger}
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/{channel}", h.handleChannel)
}

func validChannel(name string) bool {
	if name == "" || len(name) > maxChannelLen {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")
	if !validChannel(channel) {
		server.BadRequest(w, "invalid channel name", r.URL.Path)
		return
	}

	userID := ""
	if h.tokens != nil {
		// Browsers cannot set headers on WebSocket handshakes.
		token := r.URL.Query().Get("token")
		if token == "" {
			server.Unauthorized(w, "missing token parameter", r.URL.Path)
			return
		}
		claims, err := h.tokens.ValidateAccessToken(token)
		if err != nil {
			server.Unauthorized(w, "invalid or expired token", r.URL.Path)
			return
		}
		userID = claims.UserID
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin is not checked; access is gated by the token.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:    conn,
		userID:  userID,
		channel: channel,
		send:    make(chan realtime.Update, clientBuffer),
		logger:  h.logger,
	}
	h.hub.Register(client)

	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}
