package eventstore

import (
	"context"
	"fmt"
)

// SnapshotStore maintains the read model of one aggregate type.
//
// HandlesMessage must not have side effects: the bus asks every store and
// requires exactly one of them to claim the message.
type SnapshotStore interface {
	HandlesMessage(key AggregateEventMessageKey, value Message) bool
	HandleMessage(ctx context.Context, key AggregateEventMessageKey, value Message, src Source) error
}

// TombstoneSnapshotStore is implemented by stores that remove their snapshot
// when the aggregate is tombstoned.
type TombstoneSnapshotStore interface {
	SnapshotStore
	HandlesTombstoneMessage(key AggregateEventMessageKey) bool
	HandleTombstoneMessage(ctx context.Context, key AggregateEventMessageKey) error
}

// NoTombstones can be embedded by stores that have to satisfy
// TombstoneSnapshotStore without accepting tombstones.
type NoTombstones struct{}

func (NoTombstones) HandlesTombstoneMessage(AggregateEventMessageKey) bool { return false }

func (NoTombstones) HandleTombstoneMessage(_ context.Context, key AggregateEventMessageKey) error {
	return fmt.Errorf("%w: %v", ErrTombstoneUnsupported, key)
}

func handlesTombstone(s SnapshotStore, key AggregateEventMessageKey) (TombstoneSnapshotStore, bool) {
	ts, ok := s.(TombstoneSnapshotStore)
	if !ok || !ts.HandlesTombstoneMessage(key) {
		return nil, false
	}
	return ts, true
}
