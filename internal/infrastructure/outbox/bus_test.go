package outbox

import (
	"context"
	"sync"
	"testing"
	"time"

	domoutbox "github.com/Denis-77/megano-store/internal/domain/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()

	var mu sync.Mutex
	var got []string
	received := make(chan struct{}, 2)

	handler := func(tag string) domoutbox.Handler {
		return func(_ context.Context, e domoutbox.Event) error {
			mu.Lock()
			got = append(got, tag+":"+e.EventName())
			mu.Unlock()
			received <- struct{}{}
			return nil
		}
	}
	bus.Subscribe("order.created", handler("a"))
	bus.Subscribe("order.created", handler("b"))

	bus.Start(ctx)
	defer bus.Stop(ctx)

	require.NoError(t, bus.Publish(ctx, testEvent{name: "order.created"}))

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for handler")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a:order.created", "b:order.created"}, got)
}

func TestBusPanickingHandlerDoesNotStarveOthers(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()

	received := make(chan struct{}, 1)
	bus.Subscribe("boom", func(context.Context, domoutbox.Event) error {
		panic("handler blew up")
	})
	bus.Subscribe("boom", func(context.Context, domoutbox.Event) error {
		received <- struct{}{}
		return nil
	})

	bus.Start(ctx)
	defer bus.Stop(ctx)

	require.NoError(t, bus.Publish(ctx, testEvent{name: "boom"}))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler never ran")
	}
}

func TestBusPublishNilEventIsNoOp(t *testing.T) {
	bus := NewBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), nil))
}

func TestBusPublishHonorsContext(t *testing.T) {
	bus := NewBus(nil)
	// No Start: fill the queue so Publish must block, then cancel.
	for i := 0; i < cap(bus.queue); i++ {
		require.NoError(t, bus.Publish(context.Background(), testEvent{name: "filler"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bus.Publish(ctx, testEvent{name: "overflow"})
	assert.ErrorIs(t, err, context.Canceled)
}
