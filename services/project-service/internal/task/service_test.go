package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore/eventstoretest"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/kafkax"
)

type memRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]Task
}

func newMemRepository() *memRepository {
	return &memRepository{tasks: map[uuid.UUID]Task{}}
}

func (r *memRepository) Find(_ context.Context, id uuid.UUID) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (r *memRepository) Insert(_ context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.Identifier]; ok {
		return fmt.Errorf("task %s exists", t.Identifier)
	}
	r.tasks[t.Identifier] = t
	return nil
}

func (r *memRepository) Update(_ context.Context, t Task, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.tasks[t.Identifier]; !ok || cur.Version != expectedVersion {
		return fmt.Errorf("task %s not at version %d", t.Identifier, expectedVersion)
	}
	r.tasks[t.Identifier] = t
	return nil
}

func (r *memRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[id]
	delete(r.tasks, id)
	return ok, nil
}

func (r *memRepository) DeleteByProject(_ context.Context, project uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tasks {
		if t.Project == project {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	tx          *eventstoretest.Transactor
	repo        *memRepository
	codec       *eventstore.Codec
	partitioner *kafkax.Murmur2Partitioner
	bus         *eventstore.Bus
	service     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	partitioner, err := kafkax.NewMurmur2Partitioner(12)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		tx:          eventstoretest.NewTransactor(),
		repo:        newMemRepository(),
		codec:       eventstore.NewCodec(),
		partitioner: partitioner,
	}
	RegisterValues(f.codec)
	f.bus = eventstore.NewBus(
		eventstore.NewStore(f.tx, f.tx, f.codec, partitioner),
		eventstore.NewMapperRegistry(NewMapper()),
		nil,
		[]eventstore.SnapshotStore{NewSnapshotStore(f.repo, logger)},
		eventstore.WithTombstones(),
		eventstore.WithLogger(logger),
	)
	f.service = NewService(f.tx, f.bus, f.repo)
	return f
}

func (f *fixture) decode(t *testing.T, i int) (eventstore.AggregateEventMessageKey, eventstore.Message) {
	t.Helper()
	rec := f.tx.Records()[i]
	k, err := f.codec.DecodeKey(rec.EventKey)
	require.NoError(t, err)
	if rec.EventValue == nil {
		return k.(eventstore.AggregateEventMessageKey), nil
	}
	v, err := f.codec.DecodeValue(AggregateType, rec.EventValue)
	require.NoError(t, err)
	return k.(eventstore.AggregateEventMessageKey), v
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project := uuid.New()

	created, err := f.service.Create(ctx, CreateCommand{Project: project, Name: "Pour foundation"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.Version)

	updated, err := f.service.Update(ctx, UpdateCommand{Identifier: created.Identifier, Version: 0, Name: "Pour foundation B", Description: "north wing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	started, err := f.service.Start(ctx, created.Identifier, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, started.Status)

	closed, err := f.service.Close(ctx, created.Identifier, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), closed.Version)

	stored, err := f.service.Get(ctx, created.Identifier)
	require.NoError(t, err)
	assert.Equal(t, Task{
		Identifier:  created.Identifier,
		Version:     3,
		Project:     project,
		Name:        "Pour foundation B",
		Description: "north wing",
		Status:      StatusClosed,
	}, stored)

	require.Len(t, f.tx.Records(), 4)
	for i, name := range []string{EventCreated, EventUpdated, EventStarted, EventClosed} {
		key, value := f.decode(t, i)
		assert.Equal(t, int64(i), key.AggregateIdentifier.Version)
		assert.Equal(t, project, key.RootContextID)
		assert.Equal(t, name, value.(EventMessage).Name)
		assert.Equal(t, f.partitioner.Partition(project), f.tx.Records()[i].PartitionNumber)
	}
}

func TestCommandsRejectOutdatedVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.service.Create(ctx, CreateCommand{Project: uuid.New(), Name: "Scaffold"})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, UpdateCommand{Identifier: created.Identifier, Version: 0, Name: "Scaffold 2"})
	require.NoError(t, err)

	_, err = f.service.Update(ctx, UpdateCommand{Identifier: created.Identifier, Version: 0, Name: "stale"})
	require.ErrorIs(t, err, eventstore.ErrEntityOutdated)

	err = f.service.Delete(ctx, created.Identifier, 0)
	require.ErrorIs(t, err, eventstore.ErrEntityOutdated)

	assert.Len(t, f.tx.Records(), 2)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.service.Create(ctx, CreateCommand{Project: uuid.New(), Name: "Wiring"})
	require.NoError(t, err)

	_, err = f.service.Close(ctx, created.Identifier, 0)
	require.NoError(t, err)
	_, err = f.service.Start(ctx, created.Identifier, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.service.Close(ctx, created.Identifier, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCommandsOnMissingTask(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Update(context.Background(), UpdateCommand{Identifier: uuid.New()})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.service.Delete(context.Background(), uuid.New(), 0), ErrNotFound)

	_, err = f.service.Create(context.Background(), CreateCommand{Name: "orphan"})
	require.Error(t, err)
}

func TestDeleteTombstonesEveryVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project := uuid.New()

	created, err := f.service.Create(ctx, CreateCommand{Project: project, Name: "Task 42"})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, UpdateCommand{Identifier: created.Identifier, Version: 0, Name: "Task 42 v1"})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, UpdateCommand{Identifier: created.Identifier, Version: 1, Name: "Task 42 v2"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, created.Identifier, 2))

	records := f.tx.Records()
	require.Len(t, records, 6)
	require.NotNil(t, records[3].TransactionIdentifier)
	for i := 3; i < 6; i++ {
		key, value := f.decode(t, i)
		assert.Nil(t, value)
		assert.Equal(t, int64(i-3), key.AggregateIdentifier.Version)
		assert.Equal(t, records[0].PartitionNumber, records[i].PartitionNumber)
		assert.Equal(t, *records[3].TransactionIdentifier, *records[i].TransactionIdentifier, "one delete is one transaction")
	}
	require.NotNil(t, records[0].TransactionIdentifier)
	assert.NotEqual(t, *records[0].TransactionIdentifier, *records[3].TransactionIdentifier)
	_, err = f.service.Get(ctx, created.Identifier)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReplayRebuildsTasks(t *testing.T) {
	source := newFixture(t)
	ctx := context.Background()
	project := uuid.New()

	kept, err := source.service.Create(ctx, CreateCommand{Project: project, Name: "kept"})
	require.NoError(t, err)
	_, err = source.service.Start(ctx, kept.Identifier, 0)
	require.NoError(t, err)
	removed, err := source.service.Create(ctx, CreateCommand{Project: project, Name: "removed"})
	require.NoError(t, err)
	require.NoError(t, source.service.Delete(ctx, removed.Identifier, 0))

	target := newFixture(t)
	adapter := eventstore.NewRestoreAdapter(target.bus, target.codec, target.tx, nil)
	records := source.tx.Records()
	for pass := 0; pass < 2; pass++ {
		for _, rec := range records {
			require.NoError(t, adapter.Consume(ctx, eventstore.RawRecord{Key: rec.EventKey, Value: rec.EventValue}))
		}
	}

	want, err := source.service.Get(ctx, kept.Identifier)
	require.NoError(t, err)
	got, err := target.service.Get(ctx, kept.Identifier)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = target.service.Get(ctx, removed.Identifier)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, target.tx.Records())
}

func TestSnapshotStoreHandlesMessage(t *testing.T) {
	store := NewSnapshotStore(newMemRepository(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	key := Key(Task{Identifier: uuid.New(), Project: uuid.New()})

	assert.True(t, store.HandlesMessage(key, EventMessage{Name: EventStarted}))
	assert.False(t, store.HandlesMessage(key, EventMessage{Name: "DELETED"}))
	assert.False(t, store.HandlesMessage(key, "not a task message"))

	other := key
	other.AggregateIdentifier.Type = "PROJECT"
	assert.False(t, store.HandlesMessage(other, EventMessage{Name: EventCreated}))
	assert.False(t, store.HandlesTombstoneMessage(other))
	assert.True(t, store.HandlesTombstoneMessage(key))
}
