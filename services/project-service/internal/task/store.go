package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
)

// Repository persists task snapshots. Writes run in the transaction carried
// by ctx.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Task, error)
	Insert(ctx context.Context, t Task) error
	Update(ctx context.Context, t Task, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByProject(ctx context.Context, project uuid.UUID) (int64, error)
}

// SnapshotStore applies task events and tombstones to the task read model.
type SnapshotStore struct {
	repo   Repository
	logger *slog.Logger
}

var _ eventstore.TombstoneSnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(repo Repository, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{repo: repo, logger: logger.With(logattr.Component("task-snapshot-store"))}
}

func (s *SnapshotStore) HandlesMessage(key eventstore.AggregateEventMessageKey, value eventstore.Message) bool {
	if key.AggregateIdentifier.Type != AggregateType {
		return false
	}
	msg, ok := value.(EventMessage)
	if !ok {
		return false
	}
	switch msg.Name {
	case EventCreated, EventUpdated, EventStarted, EventClosed:
		return true
	default:
		return false
	}
}

func (s *SnapshotStore) HandleMessage(ctx context.Context, key eventstore.AggregateEventMessageKey, value eventstore.Message, src eventstore.Source) error {
	msg := value.(EventMessage)
	id := key.AggregateIdentifier.Identifier

	current, err := s.currentVersion(ctx, id)
	if err != nil {
		return err
	}
	apply, err := eventstore.ShouldApply(current, key.AggregateIdentifier.Version, false, src)
	if err != nil {
		return err
	}
	if !apply {
		s.logger.InfoContext(ctx, "skipping task event", logattr.AggregateID(id), logattr.Version(key.AggregateIdentifier.Version))
		return nil
	}

	t := msg.Aggregate
	t.Identifier = id
	t.Version = key.AggregateIdentifier.Version
	t.Project = key.RootContextID
	if current == nil {
		return s.repo.Insert(ctx, t)
	}
	return s.repo.Update(ctx, t, *current)
}

func (s *SnapshotStore) HandlesTombstoneMessage(key eventstore.AggregateEventMessageKey) bool {
	return key.AggregateIdentifier.Type == AggregateType
}

// HandleTombstoneMessage removes the snapshot if it still exists. A deleted
// task produces one tombstone per version, so replay sees most of them
// after the row is already gone.
func (s *SnapshotStore) HandleTombstoneMessage(ctx context.Context, key eventstore.AggregateEventMessageKey) error {
	deleted, err := s.repo.Delete(ctx, key.AggregateIdentifier.Identifier)
	if err != nil {
		return fmt.Errorf("delete task snapshot: %w", err)
	}
	if deleted {
		s.logger.DebugContext(ctx, "task snapshot deleted", logattr.AggregateID(key.AggregateIdentifier.Identifier))
	}
	return nil
}

func (s *SnapshotStore) currentVersion(ctx context.Context, id uuid.UUID) (*int64, error) {
	t, err := s.repo.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t.Version, nil
}
