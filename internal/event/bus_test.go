package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/pkg/platform"
	"go.uber.org/zap"
)

func TestBus_PublishReachesTopicAndWildcard(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var topic, all int
	bus.Subscribe("theme.updated", func(context.Context, platform.Event) { topic++ })
	bus.SubscribeAll(func(context.Context, platform.Event) { all++ })

	_ = bus.Publish(context.Background(), platform.Event{Topic: "theme.updated"})
	_ = bus.Publish(context.Background(), platform.Event{Topic: "other"})

	if topic != 1 {
		t.Errorf("topic handler calls = %d, want 1", topic)
	}
	if all != 2 {
		t.Errorf("wildcard handler calls = %d, want 2", all)
	}
}

func TestBus_UnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	bus := NewBus(nil)
	var a, b int
	unsubA := bus.Subscribe("x", func(context.Context, platform.Event) { a++ })
	bus.Subscribe("x", func(context.Context, platform.Event) { b++ })

	unsubA()
	unsubA()
	_ = bus.Publish(context.Background(), platform.Event{Topic: "x"})

	if a != 0 || b != 1 {
		t.Errorf("a=%d b=%d, want 0 and 1", a, b)
	}
	if got := bus.HandlerCount("x"); got != 1 {
		t.Errorf("HandlerCount = %d, want 1", got)
	}
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var called bool
	bus.Subscribe("x", func(context.Context, platform.Event) { panic("boom") })
	bus.Subscribe("x", func(context.Context, platform.Event) { called = true })

	if err := bus.Publish(context.Background(), platform.Event{Topic: "x"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !called {
		t.Error("handler after panicking handler was not called")
	}
}

func TestBus_PublishAsync(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe("x", func(context.Context, platform.Event) { wg.Done() })
	bus.SubscribeAll(func(context.Context, platform.Event) { wg.Done() })

	bus.PublishAsync(context.Background(), platform.Event{Topic: "x"})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not run")
	}
}
