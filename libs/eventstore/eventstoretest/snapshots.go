package eventstoretest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
)

// Value is a minimal event payload for tests.
type Value struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

const Deleted = "DELETED"

type Applied struct {
	Key    eventstore.AggregateEventMessageKey
	Value  eventstore.Message
	Source eventstore.Source
}

// SnapshotStore keeps the latest version and payload per aggregate of one
// type. Changes take effect when the surrounding transaction commits.
type SnapshotStore struct {
	eventstore.NoTombstones

	AggregateType string
	// Fail, if set, is returned by HandleMessage without applying anything.
	Fail error

	mu        sync.Mutex
	snapshots map[uuid.UUID]Snapshot
	applied   []Applied
}

type Snapshot struct {
	Version int64
	Data    string
}

func NewSnapshotStore(aggregateType string) *SnapshotStore {
	return &SnapshotStore{AggregateType: aggregateType, snapshots: map[uuid.UUID]Snapshot{}}
}

func (s *SnapshotStore) HandlesMessage(key eventstore.AggregateEventMessageKey, value eventstore.Message) bool {
	_, ok := value.(Value)
	return ok && key.AggregateIdentifier.Type == s.AggregateType
}

func (s *SnapshotStore) HandleMessage(ctx context.Context, key eventstore.AggregateEventMessageKey, value eventstore.Message, src eventstore.Source) error {
	if s.Fail != nil {
		return s.Fail
	}
	v := value.(Value)
	id := key.AggregateIdentifier.Identifier

	s.mu.Lock()
	var current *int64
	if snap, ok := s.snapshots[id]; ok {
		current = &snap.Version
	}
	s.mu.Unlock()

	apply, err := eventstore.ShouldApply(current, key.AggregateIdentifier.Version, v.Name == Deleted, src)
	if err != nil || !apply {
		return err
	}
	OnCommit(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if v.Name == Deleted {
			delete(s.snapshots, id)
		} else {
			s.snapshots[id] = Snapshot{Version: key.AggregateIdentifier.Version, Data: v.Data}
		}
		s.applied = append(s.applied, Applied{Key: key, Value: value, Source: src})
	})
	return nil
}

func (s *SnapshotStore) Snapshot(id uuid.UUID) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[id]
	return snap, ok
}

func (s *SnapshotStore) Applied() []Applied {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Applied(nil), s.applied...)
}

func (s *SnapshotStore) remove(ctx context.Context, id uuid.UUID) {
	OnCommit(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.snapshots, id)
	})
}

// TombstoneSnapshotStore is a SnapshotStore that also accepts tombstones for
// its aggregate type and removes the snapshot.
type TombstoneSnapshotStore struct {
	*SnapshotStore
}

func NewTombstoneSnapshotStore(aggregateType string) *TombstoneSnapshotStore {
	return &TombstoneSnapshotStore{SnapshotStore: NewSnapshotStore(aggregateType)}
}

func (s *TombstoneSnapshotStore) HandlesTombstoneMessage(key eventstore.AggregateEventMessageKey) bool {
	return key.AggregateIdentifier.Type == s.AggregateType
}

func (s *TombstoneSnapshotStore) HandleTombstoneMessage(ctx context.Context, key eventstore.AggregateEventMessageKey) error {
	if s.Fail != nil {
		return s.Fail
	}
	s.remove(ctx, key.AggregateIdentifier.Identifier)
	return nil
}
