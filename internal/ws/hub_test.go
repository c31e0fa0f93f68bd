package ws

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/internal/event"
	"github.com/HerbHall/themeforge/internal/realtime"
	"go.uber.org/zap"
)

func newTestClient(userID, channel string) *Client {
	return &Client{
		userID:  userID,
		channel: channel,
		send:    make(chan realtime.Update, clientBuffer),
		logger:  zap.NewNop(),
	}
}

func testUpdate(source string) realtime.Update {
	return realtime.Update{Type: realtime.UpdateToken, Path: []string{"colors"}, Value: []byte(`"#fff"`), Timestamp: 1, Source: source}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	a := newTestClient("user-1", "theme_updates")
	b := newTestClient("user-2", "theme_updates")
	c := newTestClient("user-3", "drafts")

	for _, cl := range []*Client{a, b, c} {
		hub.Register(cl)
	}
	if got := hub.ClientCount(""); got != 3 {
		t.Errorf("ClientCount(all) = %d, want 3", got)
	}
	if got := hub.ClientCount("theme_updates"); got != 2 {
		t.Errorf("ClientCount(theme_updates) = %d, want 2", got)
	}

	hub.Unregister(a)
	hub.Unregister(a) // second call is a no-op
	if _, ok := <-a.send; ok {
		t.Error("send channel not closed after Unregister")
	}
	if got := hub.ClientCount("theme_updates"); got != 1 {
		t.Errorf("ClientCount(theme_updates) = %d, want 1", got)
	}

	hub.Unregister(newTestClient("ghost", "nowhere"))
	if got := hub.ClientCount(""); got != 2 {
		t.Errorf("ClientCount(all) = %d, want 2", got)
	}
}

func TestHub_BroadcastIsPerChannel(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	inChannel := newTestClient("u1", "theme_updates")
	other := newTestClient("u2", "drafts")
	hub.Register(inChannel)
	hub.Register(other)

	hub.Broadcast("theme_updates", testUpdate("a"))
	hub.Broadcast("empty", testUpdate("b"))

	if len(inChannel.send) != 1 {
		t.Fatalf("in-channel client has %d updates, want 1", len(inChannel.send))
	}
	if u := <-inChannel.send; u.Source != "a" {
		t.Errorf("source = %q, want a", u.Source)
	}
	if len(other.send) != 0 {
		t.Errorf("other channel received %d updates", len(other.send))
	}
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	client := newTestClient("user-1", "c")
	hub.Register(client)

	for i := 0; i < clientBuffer; i++ {
		client.send <- testUpdate("fill")
	}
	hub.Broadcast("c", testUpdate("dropped"))

	if len(client.send) != clientBuffer {
		t.Fatalf("buffer length = %d, want %d", len(client.send), clientBuffer)
	}
	for len(client.send) > 0 {
		if u := <-client.send; u.Source == "dropped" {
			t.Fatal("dropped update was delivered")
		}
	}
}

func TestHub_FollowsBusTopic(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	hub := NewHub(bus, zap.NewNop())
	topic := realtime.TopicFor("theme_updates")

	client := newTestClient("u1", "theme_updates")
	hub.Register(client)
	second := newTestClient("u2", "theme_updates")
	hub.Register(second)
	if got := bus.HandlerCount(topic); got != 1 {
		t.Fatalf("bus handlers = %d, want one per channel", got)
	}

	if err := realtime.Publish(context.Background(), bus, "theme_updates", testUpdate("bus")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case u := <-client.send:
		if u.Source != "bus" {
			t.Errorf("source = %q", u.Source)
		}
	case <-time.After(time.Second):
		t.Fatal("bus update not delivered")
	}

	hub.Unregister(client)
	hub.Unregister(second)
	if got := bus.HandlerCount(topic); got != 0 {
		t.Errorf("bus handlers after last client left = %d, want 0", got)
	}
}

func TestHub_Concurrent(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			client := newTestClient(fmt.Sprintf("user-%d", id), fmt.Sprintf("ch-%d", id%3))
			hub.Register(client)
			go func() {
				for range client.send {
				}
			}()
			time.Sleep(5 * time.Millisecond)
			hub.Unregister(client)
		}(i)
		go func(id int) {
			defer wg.Done()
			hub.Broadcast(fmt.Sprintf("ch-%d", id%3), testUpdate("x"))
			_ = hub.ClientCount("")
		}(i)
	}
	wg.Wait()

	if got := hub.ClientCount(""); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}
}

func TestValidChannel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"theme_updates", true},
		{"team-a.drafts", true},
		{"", false},
		{"has space", false},
		{"slash/y", false},
		{string(make([]byte, maxChannelLen+1)), false},
	}
	for _, tt := range tests {
		if got := validChannel(tt.name); got != tt.want {
			t.Errorf("validChannel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
