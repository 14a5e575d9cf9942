package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitReachesSubscribers(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTypeUserRegistered, func(ctx context.Context, e Event) {
		received <- e
	})

	bus.Emit(context.Background(), UserRegisteredEvent{UserID: 42, Username: "alice"})

	select {
	case e := <-received:
		ev := e.(UserRegisteredEvent)
		assert.Equal(t, int64(42), ev.UserID)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestBus_EmitIgnoresOtherTypes(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		received <- e
	})

	bus.Emit(context.Background(), UserRegisteredEvent{UserID: 42})

	select {
	case <-received:
		t.Fatal("handler invoked for unrelated event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransactionalBus_FlushAndDiscard(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 2)

	bus.Subscribe(EventTypeUserRegistered, func(ctx context.Context, e Event) {
		received <- e
	})

	t.Run("discard drops pending events", func(t *testing.T) {
		txBus := NewTransactionalBus(bus)
		txBus.Publish(UserRegisteredEvent{UserID: 1})
		txBus.Discard()
		txBus.Flush(context.Background())

		select {
		case <-received:
			t.Fatal("discarded event was delivered")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("flush delivers pending events once", func(t *testing.T) {
		txBus := NewTransactionalBus(bus)
		txBus.Publish(UserRegisteredEvent{UserID: 2})
		txBus.Flush(context.Background())

		select {
		case e := <-received:
			assert.Equal(t, int64(2), e.(UserRegisteredEvent).UserID)
		case <-time.After(time.Second):
			t.Fatal("flushed event was not delivered")
		}

		// Second flush has nothing left
		txBus.Flush(context.Background())
		select {
		case <-received:
			t.Fatal("event delivered twice")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
