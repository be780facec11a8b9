package eventstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore/eventstoretest"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/kafkax"
)

const (
	taskType    = "TASK"
	projectType = "PROJECT"
	partitions  = 6
)

type taskChanged struct {
	Task    uuid.UUID
	Project uuid.UUID
	Name    string
	Data    string
}

var taskMapper = eventstore.TypedMapper[taskChanged]{
	Key: func(e taskChanged, version int64) eventstore.MessageKey {
		return eventstore.AggregateEventMessageKey{
			AggregateIdentifier: eventstore.AggregateIdentifier{Type: taskType, Identifier: e.Task, Version: version},
			RootContextID:       e.Project,
		}
	},
	Value: func(e taskChanged, _ int64) eventstore.Message {
		return eventstoretest.Value{Name: e.Name, Data: e.Data}
	},
}

type harness struct {
	tx          *eventstoretest.Transactor
	codec       *eventstore.Codec
	partitioner *kafkax.Murmur2Partitioner
	tasks       *eventstoretest.TombstoneSnapshotStore
	projects    *eventstoretest.SnapshotStore
	listener    *eventstoretest.Recorder
	bus         *eventstore.Bus
}

type harnessConfig struct {
	storeOpts []eventstore.StoreOption
	busOpts   []eventstore.BusOption
	stores    func(h *harness) []eventstore.SnapshotStore
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	partitioner, err := kafkax.NewMurmur2Partitioner(partitions)
	require.NoError(t, err)

	h := &harness{
		tx:          eventstoretest.NewTransactor(),
		codec:       eventstore.NewCodec(),
		partitioner: partitioner,
		tasks:       eventstoretest.NewTombstoneSnapshotStore(taskType),
		projects:    eventstoretest.NewSnapshotStore(projectType),
		listener:    &eventstoretest.Recorder{},
	}
	eventstore.RegisterValue[eventstoretest.Value](h.codec, taskType)
	eventstore.RegisterValue[eventstoretest.Value](h.codec, projectType)

	stores := []eventstore.SnapshotStore{h.tasks, h.projects}
	if cfg.stores != nil {
		stores = cfg.stores(h)
	}

	notifier := eventstore.NewNotifier()
	notifier.Subscribe(h.listener)

	store := eventstore.NewStore(h.tx, h.tx, h.codec, partitioner, cfg.storeOpts...)
	busOpts := append([]eventstore.BusOption{eventstore.WithTombstones()}, cfg.busOpts...)
	h.bus = eventstore.NewBus(store, eventstore.NewMapperRegistry(taskMapper), notifier, stores, busOpts...)
	return h
}

func (h *harness) emit(ctx context.Context, e taskChanged, version int64) error {
	return h.tx.Run(ctx, func(ctx context.Context) error {
		return h.bus.EmitEvent(ctx, e, version)
	})
}

func (h *harness) decodeKey(t *testing.T, data []byte) eventstore.AggregateEventMessageKey {
	t.Helper()
	k, err := h.codec.DecodeKey(data)
	require.NoError(t, err)
	key, ok := k.(eventstore.AggregateEventMessageKey)
	require.True(t, ok, "expected aggregate key, got %T", k)
	return key
}

func taskKey(task, project uuid.UUID, version int64) eventstore.AggregateEventMessageKey {
	return eventstore.AggregateEventMessageKey{
		AggregateIdentifier: eventstore.AggregateIdentifier{Type: taskType, Identifier: task, Version: version},
		RootContextID:       project,
	}
}
