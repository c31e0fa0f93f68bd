package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/HerbHall/themeforge/pkg/platform"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// Transport opens a subscription to a broadcast channel. A successful return
// acknowledges the subscription. The returned channel is closed when the
// subscription ends, either because ctx is done or the remote side went away.
type Transport interface {
	Subscribe(ctx context.Context, channel string) (<-chan Update, error)
}

const subscriberBuffer = 256

// BusTransport subscribes to updates published on the in-process event bus.
type BusTransport struct {
	bus    platform.Subscriber
	logger *zap.Logger
}

// NewBusTransport creates a transport over bus.
func NewBusTransport(bus platform.Subscriber, logger *zap.Logger) *BusTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusTransport{bus: bus, logger: logger}
}

// Subscribe implements Transport.
func (t *BusTransport) Subscribe(ctx context.Context, channel string) (<-chan Update, error) {
	if t.bus == nil {
		return nil, errors.New("realtime: no event bus")
	}

	out := make(chan Update, subscriberBuffer)
	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := t.bus.Subscribe(TopicFor(channel), func(_ context.Context, ev platform.Event) {
		u, ok := updateFromPayload(ev.Payload)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- u:
		default:
			t.logger.Warn("realtime subscriber buffer full, dropping update",
				zap.String("channel", channel))
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()
	return out, nil
}

func updateFromPayload(payload any) (Update, bool) {
	switch u := payload.(type) {
	case Update:
		return u, true
	case *Update:
		if u == nil {
			return Update{}, false
		}
		return *u, true
	}
	return Update{}, false
}

// Publish sends u to every subscriber of channel on the bus.
func Publish(ctx context.Context, pub platform.Publisher, channel string, u Update) error {
	return pub.Publish(ctx, platform.Event{
		Topic:     TopicFor(channel),
		Source:    u.Source,
		Timestamp: time.UnixMilli(u.Timestamp),
		Payload:   u,
	})
}

// WebSocketTransport subscribes to a remote themeforge server over WebSocket.
type WebSocketTransport struct {
	baseURL string
	token   string
	logger  *zap.Logger
}

// NewWebSocketTransport creates a transport dialing baseURL (ws:// or wss://).
// token, when set, is sent as the access token query parameter.
func NewWebSocketTransport(baseURL, token string, logger *zap.Logger) *WebSocketTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketTransport{baseURL: baseURL, token: token, logger: logger}
}

// ChannelURL returns the URL dialed for channel.
func (t *WebSocketTransport) ChannelURL(channel string) (string, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse realtime url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported realtime url scheme %q", u.Scheme)
	}
	u = u.JoinPath("api", "v1", "ws", channel)
	if t.token != "" {
		q := u.Query()
		q.Set("token", t.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Subscribe implements Transport.
func (t *WebSocketTransport) Subscribe(ctx context.Context, channel string) (<-chan Update, error) {
	target, err := t.ChannelURL(channel)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", channel, err)
	}

	out := make(chan Update, subscriberBuffer)
	go func() {
		defer close(out)
		defer conn.CloseNow()
		for {
			var u Update
			if err := wsjson.Read(ctx, conn, &u); err != nil {
				if ctx.Err() == nil {
					t.logger.Debug("websocket read ended", zap.String("channel", channel), zap.Error(err))
				}
				return
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
