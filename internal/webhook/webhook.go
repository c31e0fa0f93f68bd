// Package webhook posts broadcast theme updates to an external HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/version"
	"github.com/HerbHall/themeforge/pkg/platform"
	"go.uber.org/zap"
)

// Config holds the notifier configuration.
type Config struct {
	URL     string
	Timeout time.Duration
	Enabled bool
	// Channel is the broadcast channel forwarded to URL.
	Channel string
}

// ConfigFrom reads the "webhook" subtree: url, timeout, enabled and channel.
func ConfigFrom(c platform.Config) Config {
	cfg := Config{
		Timeout: 10 * time.Second,
		Enabled: true,
		Channel: realtime.DefaultChannel,
	}
	if c == nil {
		return cfg
	}
	if u := c.GetString("url"); u != "" {
		cfg.URL = u
	}
	if d := c.GetDuration("timeout"); d > 0 {
		cfg.Timeout = d
	}
	if c.IsSet("enabled") {
		cfg.Enabled = c.GetBool("enabled")
	}
	if ch := c.GetString("channel"); ch != "" {
		cfg.Channel = ch
	}
	return cfg
}

// Payload is the JSON body sent to the webhook URL.
type Payload struct {
	Event     string          `json:"event"`
	Channel   string          `json:"channel"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
	Update    realtime.Update `json:"update"`
}

// Notifier forwards every update published on its channel.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a Notifier.
func New(cfg Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Channel == "" {
		cfg.Channel = realtime.DefaultChannel
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Active reports whether the notifier will deliver anything.
func (n *Notifier) Active() bool {
	return n.cfg.Enabled && n.cfg.URL != ""
}

// Subscribe attaches the notifier to bus. Deliveries run off the publishing
// goroutine. An inactive notifier does not subscribe.
func (n *Notifier) Subscribe(bus platform.Subscriber) (unsubscribe func()) {
	if !n.Active() {
		if n.cfg.Enabled {
			n.logger.Warn("webhook URL not configured; notifications will be dropped",
				zap.String("component", "webhook"),
			)
		}
		return func() {}
	}
	n.logger.Info("webhook notifier enabled",
		zap.String("url", n.cfg.URL),
		zap.String("channel", n.cfg.Channel),
		zap.Duration("timeout", n.cfg.Timeout),
	)
	return bus.Subscribe(realtime.TopicFor(n.cfg.Channel), func(ctx context.Context, ev platform.Event) {
		go n.HandleEvent(context.WithoutCancel(ctx), ev)
	})
}

// HandleEvent delivers one bus event. Events that do not carry an update are
// ignored.
func (n *Notifier) HandleEvent(ctx context.Context, event platform.Event) {
	if !n.Active() {
		return
	}
	var u realtime.Update
	switch p := event.Payload.(type) {
	case realtime.Update:
		u = p
	case *realtime.Update:
		if p == nil {
			return
		}
		u = *p
	default:
		return
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.UnixMilli(u.Timestamp)
	}
	body, err := json.Marshal(Payload{
		Event:     event.Topic,
		Channel:   n.cfg.Channel,
		Source:    event.Source,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Update:    u,
	})
	if err != nil {
		n.logger.Error("failed to marshal webhook payload",
			zap.String("topic", event.Topic),
			zap.Error(err),
		)
		return
	}
	n.send(ctx, body, event.Topic)
}

func (n *Notifier) send(ctx context.Context, body []byte, topic string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to create webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "themeforge-webhook/"+version.Short())

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("url", n.cfg.URL),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.Warn("webhook endpoint returned error",
			zap.String("url", n.cfg.URL),
			zap.String("topic", topic),
			zap.Int("status_code", resp.StatusCode),
		)
		return
	}
	n.logger.Debug("webhook delivered",
		zap.String("topic", topic),
		zap.Int("status_code", resp.StatusCode),
	)
}
