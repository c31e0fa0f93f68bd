package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/internal/event"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// fakeTransport fails the first `failures` subscribes, then hands out ch.
type fakeTransport struct {
	mu       sync.Mutex
	calls    int
	failures int
	ch       chan Update
}

func (f *fakeTransport) Subscribe(_ context.Context, _ string) (<-chan Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}
	return f.ch, nil
}

func (f *fakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func collect(m *Manager) (func() []int64, func()) {
	var mu sync.Mutex
	var got []int64
	unsub := m.OnUpdate(func(u Update) {
		mu.Lock()
		got = append(got, u.Timestamp)
		mu.Unlock()
	})
	return func() []int64 {
		mu.Lock()
		defer mu.Unlock()
		out := make([]int64, len(got))
		copy(out, got)
		return out
	}, unsub
}

func equalTimestamps(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFlush_OrdersByTimestamp(t *testing.T) {
	m := NewManager(&fakeTransport{}, Config{Batch: true, Debounce: time.Hour}, zap.NewNop())
	got, _ := collect(m)

	for _, ts := range []int64{30, 10, 20} {
		m.HandleUpdate(Update{Type: UpdateToken, Timestamp: ts})
	}
	if len(got()) != 0 {
		t.Fatal("batched updates dispatched before flush")
	}
	if m.Pending() != 3 {
		t.Fatalf("Pending = %d, want 3", m.Pending())
	}

	m.Flush()

	if want := []int64{10, 20, 30}; !equalTimestamps(got(), want) {
		t.Errorf("delivery order = %v, want %v", got(), want)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending after flush = %d, want 0", m.Pending())
	}
}

func TestFlush_StableForEqualTimestamps(t *testing.T) {
	m := NewManager(&fakeTransport{}, Config{Batch: true, Debounce: time.Hour, Priority: PriorityHigh}, nil)
	var sources []string
	m.OnUpdate(func(u Update) { sources = append(sources, u.Source) })

	m.HandleUpdate(Update{Timestamp: 5, Source: "a"})
	m.HandleUpdate(Update{Timestamp: 5, Source: "b"})
	m.HandleUpdate(Update{Timestamp: 1, Source: "c"})
	m.Flush()

	if strings.Join(sources, "") != "cab" {
		t.Errorf("order = %v, want [c a b]", sources)
	}
}

func TestHandleUpdate_DebounceFlushes(t *testing.T) {
	m := NewManager(&fakeTransport{}, Config{Batch: true, Debounce: 20 * time.Millisecond}, zap.NewNop())
	got, _ := collect(m)

	for _, ts := range []int64{30, 10, 20} {
		m.HandleUpdate(Update{Timestamp: ts})
	}

	waitFor(t, func() bool { return len(got()) == 3 })
	if want := []int64{10, 20, 30}; !equalTimestamps(got(), want) {
		t.Errorf("delivery order = %v, want %v", got(), want)
	}
}

func TestHandleUpdate_UnbatchedIsSynchronous(t *testing.T) {
	m := NewManager(&fakeTransport{}, Config{Batch: false}, zap.NewNop())
	got, _ := collect(m)

	m.HandleUpdate(Update{Timestamp: 2})
	if want := []int64{2}; !equalTimestamps(got(), want) {
		t.Fatalf("after first update got %v, want %v", got(), want)
	}
	m.HandleUpdate(Update{Timestamp: 1})
	if want := []int64{2, 1}; !equalTimestamps(got(), want) {
		t.Errorf("got %v, want %v", got(), want)
	}
}

func TestOnUpdate_UnsubscribeRemovesOnlyThatListener(t *testing.T) {
	m := NewManager(&fakeTransport{}, Config{Batch: false}, zap.NewNop())
	var a, b int
	unsubA := m.OnUpdate(func(Update) { a++ })
	m.OnUpdate(func(Update) { b++ })

	m.HandleUpdate(Update{})
	unsubA()
	m.HandleUpdate(Update{})

	if a != 1 || b != 2 {
		t.Errorf("a=%d b=%d, want 1 and 2", a, b)
	}
}

func TestDispatch_ListenerPanicIsContained(t *testing.T) {
	m := NewManager(&fakeTransport{}, Config{Batch: false}, zap.NewNop())
	var called bool
	m.OnUpdate(func(Update) { panic("bad listener") })
	m.OnUpdate(func(Update) { called = true })

	m.HandleUpdate(Update{})
	if !called {
		t.Error("second listener not called after panic")
	}
}

func TestStart_FailureStaysDisconnected(t *testing.T) {
	tr := &fakeTransport{failures: 1}
	m := NewManager(tr, DefaultConfig(), zap.NewNop())

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("Start should report the subscribe error")
	}
	if m.State() != StateDisconnected {
		t.Errorf("State = %v, want disconnected", m.State())
	}
	m.Stop()
	if tr.Calls() != 1 {
		t.Errorf("subscribe calls = %d, want 1 without reconnect", tr.Calls())
	}
}

func TestStart_ReconnectsWithBackoff(t *testing.T) {
	tr := &fakeTransport{failures: 2, ch: make(chan Update)}
	cfg := DefaultConfig()
	cfg.ReconnectBackoff = 5 * time.Millisecond
	m := NewManager(tr, cfg, zap.NewNop())
	defer m.Stop()

	_ = m.Start(context.Background())
	waitFor(t, func() bool { return m.State() == StateConnected })
	if tr.Calls() != 3 {
		t.Errorf("subscribe calls = %d, want 3", tr.Calls())
	}
}

func TestStart_TwiceFails(t *testing.T) {
	m := NewManager(&fakeTransport{ch: make(chan Update)}, DefaultConfig(), zap.NewNop())
	defer m.Stop()

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestManager_BusTransport(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	m := NewManager(NewBusTransport(bus, zap.NewNop()), Config{Batch: false}, zap.NewNop())
	got, _ := collect(m)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.State() != StateConnected {
		t.Fatalf("State = %v, want connected", m.State())
	}

	u, err := NewUpdate(UpdateToken, []string{"colors", "cyber", "pink", "hover"}, "#123456", "test")
	if err != nil {
		t.Fatalf("NewUpdate: %v", err)
	}
	if err := Publish(context.Background(), bus, DefaultChannel, u); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	// Other channels are not delivered.
	_ = Publish(context.Background(), bus, "elsewhere", Update{Timestamp: 1})

	waitFor(t, func() bool { return len(got()) == 1 })
	if got()[0] != u.Timestamp {
		t.Errorf("timestamp = %d, want %d", got()[0], u.Timestamp)
	}

	m.Stop()
	if m.State() != StateDisconnected {
		t.Errorf("State after Stop = %v, want disconnected", m.State())
	}
	waitFor(t, func() bool { return bus.HandlerCount(TopicFor(DefaultChannel)) == 0 })
}

func TestManager_StopFlushesPending(t *testing.T) {
	m := NewManager(&fakeTransport{ch: make(chan Update)}, Config{Batch: true, Debounce: time.Hour}, zap.NewNop())
	got, _ := collect(m)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.HandleUpdate(Update{Timestamp: 7})
	m.Stop()

	if want := []int64{7}; !equalTimestamps(got(), want) {
		t.Errorf("got %v, want %v", got(), want)
	}
}

func TestWebSocketTransport_ChannelURL(t *testing.T) {
	tests := []struct {
		base    string
		token   string
		want    string
		wantErr bool
	}{
		{"ws://localhost:8080", "", "ws://localhost:8080/api/v1/ws/theme_updates", false},
		{"http://localhost:8080/", "abc", "ws://localhost:8080/api/v1/ws/theme_updates?token=abc", false},
		{"https://themes.example.com", "", "wss://themes.example.com/api/v1/ws/theme_updates", false},
		{"ftp://nope", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := NewWebSocketTransport(tt.base, tt.token, nil).ChannelURL(DefaultChannel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ChannelURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWebSocketTransport_Subscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ws/theme_updates" {
			http.NotFound(w, r)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		for _, ts := range []int64{3, 1, 2} {
			if err := wsjson.Write(r.Context(), conn, Update{Type: UpdateEffect, Timestamp: ts}); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	m := NewManager(NewWebSocketTransport(srv.URL, "", zap.NewNop()), Config{Batch: true, Debounce: 50 * time.Millisecond}, zap.NewNop())
	got, _ := collect(m)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	waitFor(t, func() bool { return len(got()) == 3 })
	if want := []int64{1, 2, 3}; !equalTimestamps(got(), want) {
		t.Errorf("got %v, want %v", got(), want)
	}
	waitFor(t, func() bool { return m.State() == StateDisconnected })
}
