package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
)

var ErrInvalidTransition = errors.New("invalid task status transition")

// Service handles task commands. Every command loads the snapshot, checks
// the caller's version and emits the resulting event in one transaction.
type Service struct {
	tx   eventstore.Transactor
	bus  *eventstore.Bus
	repo Repository
}

func NewService(tx eventstore.Transactor, bus *eventstore.Bus, repo Repository) *Service {
	return &Service{tx: tx, bus: bus, repo: repo}
}

type CreateCommand struct {
	Identifier  uuid.UUID
	Project     uuid.UUID
	Name        string
	Description string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (Task, error) {
	if cmd.Identifier == uuid.Nil {
		cmd.Identifier = uuid.New()
	}
	if cmd.Project == uuid.Nil {
		return Task{}, errors.New("task needs a project")
	}
	t := Task{
		Identifier:  cmd.Identifier,
		Project:     cmd.Project,
		Name:        cmd.Name,
		Description: cmd.Description,
		Status:      StatusOpen,
	}
	err := eventstore.RunCommand(ctx, s.tx, func(ctx context.Context) error {
		return s.bus.EmitEvent(ctx, Created{Task: t}, 0)
	})
	return t, err
}

type UpdateCommand struct {
	Identifier  uuid.UUID
	Version     int64
	Name        string
	Description string
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (Task, error) {
	return s.change(ctx, cmd.Identifier, cmd.Version, func(t Task) (Event, error) {
		t.Name = cmd.Name
		t.Description = cmd.Description
		return Updated{Task: t}, nil
	})
}

func (s *Service) Start(ctx context.Context, id uuid.UUID, version int64) (Task, error) {
	return s.change(ctx, id, version, func(t Task) (Event, error) {
		if t.Status != StatusOpen {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, t.Status, StatusStarted)
		}
		t.Status = StatusStarted
		return StatusChanged{Task: t}, nil
	})
}

func (s *Service) Close(ctx context.Context, id uuid.UUID, version int64) (Task, error) {
	return s.change(ctx, id, version, func(t Task) (Event, error) {
		if t.Status == StatusClosed {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, t.Status, StatusClosed)
		}
		t.Status = StatusClosed
		return StatusChanged{Task: t}, nil
	})
}

// Delete tombstones the task. The tombstone key uses the persisted version,
// not the caller's, so every version ever written gets a tombstone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, version int64) error {
	return eventstore.RunCommand(ctx, s.tx, func(ctx context.Context) error {
		t, err := s.repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := eventstore.AssertVersionMatches(t.Version, version); err != nil {
			return err
		}
		return s.bus.EmitTombstone(ctx, Key(t), eventstore.Online)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Task, error) {
	return s.repo.Find(ctx, id)
}

func (s *Service) change(ctx context.Context, id uuid.UUID, version int64, apply func(Task) (Event, error)) (Task, error) {
	var result Task
	err := eventstore.RunCommand(ctx, s.tx, func(ctx context.Context) error {
		t, err := s.repo.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := eventstore.AssertVersionMatches(t.Version, version); err != nil {
			return err
		}
		event, err := apply(t)
		if err != nil {
			return err
		}
		if err := s.bus.EmitEvent(ctx, event, t.Version+1); err != nil {
			return err
		}
		result = event.state()
		result.Version = t.Version + 1
		return nil
	})
	return result, err
}
