package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
)

type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Project, error)
	Insert(ctx context.Context, p Project) error
	Update(ctx context.Context, p Project, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID, expectedVersion int64) error
}

// Dependents removes snapshots that belong to a deleted project.
type Dependents interface {
	DeleteByProject(ctx context.Context, project uuid.UUID) (int64, error)
}

// SnapshotStore applies project events to the project read model. Projects
// are deleted by a DELETED event, never by tombstones.
type SnapshotStore struct {
	repo       Repository
	dependents []Dependents
	logger     *slog.Logger
}

func NewSnapshotStore(repo Repository, logger *slog.Logger, dependents ...Dependents) *SnapshotStore {
	return &SnapshotStore{
		repo:       repo,
		dependents: dependents,
		logger:     logger.With(logattr.Component("project-snapshot-store")),
	}
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
	case EventCreated, EventUpdated, EventDeleted:
		return true
	default:
		return false
	}
}

func (s *SnapshotStore) HandleMessage(ctx context.Context, key eventstore.AggregateEventMessageKey, value eventstore.Message, src eventstore.Source) error {
	msg := value.(EventMessage)
	id := key.AggregateIdentifier.Identifier
	version := key.AggregateIdentifier.Version

	var current *int64
	existing, err := s.repo.Find(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	default:
		current = &existing.Version
	}

	apply, err := eventstore.ShouldApply(current, version, msg.Name == EventDeleted, src)
	if err != nil {
		return err
	}
	if !apply {
		s.logger.InfoContext(ctx, "skipping project event", logattr.AggregateID(id), logattr.Version(version))
		return nil
	}

	if msg.Name == EventDeleted {
		return s.delete(ctx, id, *current)
	}
	p := msg.Aggregate
	p.Identifier = id
	p.Version = version
	if current == nil {
		return s.repo.Insert(ctx, p)
	}
	return s.repo.Update(ctx, p, *current)
}

func (s *SnapshotStore) delete(ctx context.Context, id uuid.UUID, current int64) error {
	for _, d := range s.dependents {
		n, err := d.DeleteByProject(ctx, id)
		if err != nil {
			return fmt.Errorf("delete snapshots of project %s: %w", id, err)
		}
		if n > 0 {
			s.logger.DebugContext(ctx, "deleted dependent snapshots", logattr.AggregateID(id), slog.Int64("count", n))
		}
	}
	return s.repo.Delete(ctx, id, current)
}
