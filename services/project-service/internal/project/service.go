package project

import (
	"context"

	"github.com/google/uuid"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
)

type Service struct {
	tx   eventstore.Transactor
	bus  *eventstore.Bus
	repo Repository
}

func NewService(tx eventstore.Transactor, bus *eventstore.Bus, repo Repository) *Service {
	return &Service{tx: tx, bus: bus, repo: repo}
}

func (s *Service) Create(ctx context.Context, id uuid.UUID, title, description string) (Project, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}
	p := Project{Identifier: id, Title: title, Description: description}
	err := eventstore.RunCommand(ctx, s.tx, func(ctx context.Context) error {
		return s.bus.EmitEvent(ctx, Created{Project: p}, 0)
	})
	return p, err
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, version int64, title, description string) (Project, error) {
	var result Project
	err := eventstore.RunCommand(ctx, s.tx, func(ctx context.Context) error {
		p, err := s.load(ctx, id, version)
		if err != nil {
			return err
		}
		p.Title = title
		p.Description = description
		if err := s.bus.EmitEvent(ctx, Updated{Project: p}, p.Version+1); err != nil {
			return err
		}
		result = p
		result.Version++
		return nil
	})
	return result, err
}

// Delete emits DELETED. The snapshot store drops the project together with
// the task snapshots of the project.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, version int64) error {
	return eventstore.RunCommand(ctx, s.tx, func(ctx context.Context) error {
		p, err := s.load(ctx, id, version)
		if err != nil {
			return err
		}
		return s.bus.EmitEvent(ctx, Deleted{Project: p}, p.Version+1)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	return s.repo.Find(ctx, id)
}

func (s *Service) load(ctx context.Context, id uuid.UUID, version int64) (Project, error) {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return Project{}, err
	}
	return p, eventstore.AssertVersionMatches(p.Version, version)
}
