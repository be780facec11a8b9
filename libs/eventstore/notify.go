package eventstore

import (
	"context"
	"sync"
)

// Notification is published in-process after an online event was applied
// and saved, still inside the emitting transaction. Value is nil for
// tombstones.
type Notification struct {
	Key   AggregateEventMessageKey
	Value Message
}

type Listener interface {
	OnEvent(ctx context.Context, n Notification) error
}

type ListenerFunc func(ctx context.Context, n Notification) error

func (f ListenerFunc) OnEvent(ctx context.Context, n Notification) error { return f(ctx, n) }

// Notifier calls its listeners synchronously in subscription order. The
// first error stops delivery and is returned to the emitter, which rolls
// back the transaction.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *Notifier) Publish(ctx context.Context, note Notification) error {
	n.mu.RLock()
	listeners := n.listeners
	n.mu.RUnlock()

	for _, l := range listeners {
		if err := l.OnEvent(ctx, note); err != nil {
			return err
		}
	}
	return nil
}
