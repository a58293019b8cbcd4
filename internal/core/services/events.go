package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/SscSPs/fireledger/internal/middleware"
)

// EventListener reacts to ledger events.
type EventListener interface {
	Handle(ctx context.Context, event domain.Event) error
}

// EventListenerFunc adapts a function to EventListener.
type EventListenerFunc func(ctx context.Context, event domain.Event) error

func (f EventListenerFunc) Handle(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

// EventDispatcher delivers events to the listeners subscribed to their name.
// Listener failures are logged; the mutation that raised the event has already committed.
type EventDispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]EventListener
}

// NewEventDispatcher creates a dispatcher with no listeners.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{listeners: map[string][]EventListener{}}
}

// Subscribe registers l for events named name.
func (d *EventDispatcher) Subscribe(name string, l EventListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], l)
}

// Dispatch runs every listener of event in subscription order.
func (d *EventDispatcher) Dispatch(ctx context.Context, event domain.Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	listeners := append([]EventListener(nil), d.listeners[event.EventName()]...)
	d.mu.RUnlock()

	for _, l := range listeners {
		if err := l.Handle(ctx, event); err != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Event listener failed",
				slog.String("event", event.EventName()),
				slog.String("error", err.Error()))
		}
	}
}
