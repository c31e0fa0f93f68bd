package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/internal/auth"
	"github.com/HerbHall/themeforge/internal/event"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/ws"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

func setupServer(t *testing.T, tokens *auth.TokenService) (*httptest.Server, *event.Bus, *ws.Hub) {
	t.Helper()
	bus := event.NewBus(zap.NewNop())
	hub := ws.NewHub(bus, zap.NewNop())
	mux := http.NewServeMux()
	ws.NewHandler(hub, tokens, zap.NewNop()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, bus, hub
}

func waitForClients(t *testing.T, hub *ws.Hub, channel string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(channel) != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount(%q) = %d, want %d", channel, hub.ClientCount(channel), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandler_RejectsBadTokens(t *testing.T) {
	tokens := auth.NewTokenService([]byte("test-secret-key-32bytes-long!!"), time.Minute)
	srv, _, _ := setupServer(t, tokens)

	for _, path := range []string{
		"/api/v1/ws/theme_updates",
		"/api/v1/ws/theme_updates?token=garbage",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, resp.StatusCode)
		}
	}

	resp, err := http.Get(srv.URL + "/api/v1/ws/bad%20name")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad channel: status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_StreamsBusUpdatesToTransport(t *testing.T) {
	tokens := auth.NewTokenService([]byte("test-secret-key-32bytes-long!!"), time.Minute)
	srv, bus, hub := setupServer(t, tokens)
	token, err := tokens.IssueAccessToken(auth.Principal{UserID: "u1", Username: "alice", Role: auth.RoleViewer})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := realtime.NewWebSocketTransport(srv.URL, token, zap.NewNop()).Subscribe(ctx, "theme_updates")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	waitForClients(t, hub, "theme_updates", 1)

	sent, _ := realtime.NewUpdate(realtime.UpdateEffect, []string{"hover", "scale"}, 1.1, "test")
	if err := realtime.Publish(ctx, bus, "theme_updates", sent); err != nil {
		t.Fatal(err)
	}
	// Other channels are not forwarded.
	_ = realtime.Publish(ctx, bus, "drafts", sent)

	select {
	case u := <-updates:
		if u.Type != realtime.UpdateEffect || u.Timestamp != sent.Timestamp || string(u.Value) != "1.1" {
			t.Errorf("received %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("update not received")
	}

	cancel()
	waitForClients(t, hub, "", 0)
}

func TestHandler_AnonymousWhenAuthDisabled(t *testing.T) {
	srv, _, hub := setupServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):]+"/api/v1/ws/drafts", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitForClients(t, hub, "drafts", 1)

	hub.Broadcast("drafts", realtime.Update{Type: realtime.UpdateTheme, Value: []byte(`{}`), Timestamp: 5})
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty frame")
	}
	conn.Close(websocket.StatusNormalClosure, "")
	waitForClients(t, hub, "drafts", 0)
}
