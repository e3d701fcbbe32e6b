package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"estate_portal_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var order []int
	bus.Subscribe("leads.created", HandlerFunc(func(ctx context.Context, event Event) error {
		order = append(order, 1)
		return nil
	}))
	bus.Subscribe("leads.created", HandlerFunc(func(ctx context.Context, event Event) error {
		order = append(order, 2)
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "leads.created"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected handlers in subscription order, got %v", order)
	}
}

func TestPublishSyncReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	wantErr := errors.New("boom")

	var secondRan bool
	bus.Subscribe("leads.created", HandlerFunc(func(ctx context.Context, event Event) error {
		return wantErr
	}))
	bus.Subscribe("leads.created", HandlerFunc(func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "leads.created"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected first handler error, got %v", err)
	}
	if secondRan {
		t.Fatal("expected handlers after the failed one to be skipped")
	}
}

func TestPublishIsAsynchronousAndIsolatesPanics(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var calls atomic.Int32
	done := make(chan struct{})
	bus.Subscribe("leads.created", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("handler bug")
	}))
	bus.Subscribe("leads.created", HandlerFunc(func(ctx context.Context, event Event) error {
		calls.Add(1)
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "leads.created"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected second handler to run despite sibling panic")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "leads.unknown"})
	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "leads.unknown"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
