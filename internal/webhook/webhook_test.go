package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/internal/config"
	"github.com/HerbHall/themeforge/internal/event"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/pkg/platform"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type recorder struct {
	mu       sync.Mutex
	received []Payload
	agents   []string
}

func (r *recorder) handler(t *testing.T, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", req.Header.Get("Content-Type"))
		}
		var p Payload
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		r.mu.Lock()
		r.received = append(r.received, p)
		r.agents = append(r.agents, req.Header.Get("User-Agent"))
		r.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

func (r *recorder) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("received %d webhooks, want %d", r.count(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConfigFrom(t *testing.T) {
	def := ConfigFrom(nil)
	if !def.Enabled || def.Timeout != 10*time.Second || def.Channel != realtime.DefaultChannel || def.URL != "" {
		t.Errorf("defaults = %+v", def)
	}

	v := viper.New()
	v.Set("webhook.url", "http://hooks.local/theme")
	v.Set("webhook.timeout", "2s")
	v.Set("webhook.enabled", false)
	v.Set("webhook.channel", "drafts")
	got := ConfigFrom(config.New(v).Sub("webhook"))
	want := Config{URL: "http://hooks.local/theme", Timeout: 2 * time.Second, Enabled: false, Channel: "drafts"}
	if got != want {
		t.Errorf("ConfigFrom = %+v, want %+v", got, want)
	}
}

func TestNotifier_DeliversBusUpdates(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t, http.StatusOK))
	defer srv.Close()

	bus := event.NewBus(zap.NewNop())
	n := New(Config{URL: srv.URL, Enabled: true}, zap.NewNop())
	unsubscribe := n.Subscribe(bus)

	u, _ := realtime.NewUpdate(realtime.UpdateToken, []string{"colors", "cyber", "pink"}, "#ee0077", "editor")
	if err := realtime.Publish(context.Background(), bus, realtime.DefaultChannel, u); err != nil {
		t.Fatal(err)
	}
	// Other channels are not forwarded.
	_ = realtime.Publish(context.Background(), bus, "drafts", u)

	rec.waitFor(t, 1)
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("received %d webhooks, want 1", rec.count())
	}
	rec.mu.Lock()
	p := rec.received[0]
	agent := rec.agents[0]
	rec.mu.Unlock()
	if p.Event != realtime.TopicFor(realtime.DefaultChannel) {
		t.Errorf("event = %q", p.Event)
	}
	if p.Source != "editor" || p.Update.Type != realtime.UpdateToken || string(p.Update.Value) != `"#ee0077"` {
		t.Errorf("payload = %+v", p)
	}
	if !strings.HasPrefix(agent, "themeforge-webhook/") {
		t.Errorf("User-Agent = %q", agent)
	}

	unsubscribe()
	_ = realtime.Publish(context.Background(), bus, realtime.DefaultChannel, u)
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("delivered after unsubscribe")
	}
}

func TestNotifier_Inactive(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t, http.StatusOK))
	defer srv.Close()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"disabled", Config{URL: srv.URL, Enabled: false}},
		{"no url", Config{Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := event.NewBus(zap.NewNop())
			n := New(tt.cfg, zap.NewNop())
			if n.Active() {
				t.Fatal("Active() = true")
			}
			n.Subscribe(bus)()
			if got := bus.HandlerCount(realtime.TopicFor(realtime.DefaultChannel)); got != 0 {
				t.Errorf("HandlerCount = %d, want 0", got)
			}
			n.HandleEvent(context.Background(), platform.Event{
				Topic:   realtime.TopicFor(realtime.DefaultChannel),
				Payload: realtime.Update{Type: realtime.UpdateTheme},
			})
		})
	}
	if rec.count() != 0 {
		t.Errorf("received %d webhooks, want 0", rec.count())
	}
}

func TestNotifier_IgnoresForeignPayloads(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t, http.StatusOK))
	defer srv.Close()

	n := New(Config{URL: srv.URL, Enabled: true}, zap.NewNop())
	n.HandleEvent(context.Background(), platform.Event{Topic: "x", Payload: map[string]string{"a": "b"}})
	n.HandleEvent(context.Background(), platform.Event{Topic: "x", Payload: (*realtime.Update)(nil)})

	if rec.count() != 0 {
		t.Errorf("received %d webhooks, want 0", rec.count())
	}
}

func TestNotifier_ServerErrorDoesNotPanic(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t, http.StatusInternalServerError))
	defer srv.Close()

	n := New(Config{URL: srv.URL, Enabled: true, Timeout: time.Second}, zap.NewNop())
	n.HandleEvent(context.Background(), platform.Event{
		Topic:   realtime.TopicFor(realtime.DefaultChannel),
		Payload: &realtime.Update{Type: realtime.UpdateEffect, Timestamp: 1},
	})
	if rec.count() != 1 {
		t.Errorf("received %d webhooks, want 1", rec.count())
	}
}
