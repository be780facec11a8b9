package app

import (
	"context"
	"log/slog"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/db"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/kafkax"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/maintenance"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/outbox"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/services/project-service/internal/project"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/services/project-service/internal/task"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/services/project-service/migrations"
)

// App holds the wired event store and command services of the project service.
type App struct {
	Bus      *eventstore.Bus
	Notifier *eventstore.Notifier
	Restore  *eventstore.RestoreAdapter
	Projects *project.Service
	Tasks    *task.Service

	ProjectRepository *project.PostgresRepository
	TaskRepository    *task.PostgresRepository
}

func Migrate(ctx context.Context, pool *db.Pool) error {
	if err := db.Migrate(ctx, pool, outbox.Migrations, "migrations"); err != nil {
		return err
	}
	return db.Migrate(ctx, pool, migrations.FS, ".")
}

func New(pool *db.Pool, cfg Config, checker maintenance.Checker, logger *slog.Logger) (*App, error) {
	partitioner, err := kafkax.NewMurmur2Partitioner(cfg.ProjectTopicPartitions)
	if err != nil {
		return nil, err
	}

	codec := eventstore.NewCodec()
	project.RegisterValues(codec)
	task.RegisterValues(codec)

	store := eventstore.NewStore(pool, outbox.NewRepository(), codec, partitioner,
		eventstore.WithMaintenance(checker),
		eventstore.WithLimits(cfg.Outbox),
	)

	projectRepo := project.NewPostgresRepository(pool)
	taskRepo := task.NewPostgresRepository(pool)

	notifier := eventstore.NewNotifier()
	notifier.Subscribe(loggingListener(logger))

	bus := eventstore.NewBus(store,
		eventstore.NewMapperRegistry(project.NewMapper(), task.NewMapper()),
		notifier,
		[]eventstore.SnapshotStore{
			project.NewSnapshotStore(projectRepo, logger, taskRepo),
			task.NewSnapshotStore(taskRepo, logger),
		},
		eventstore.WithTombstones(),
		eventstore.WithLogger(logger),
	)

	return &App{
		Bus:               bus,
		Notifier:          notifier,
		Restore:           eventstore.NewRestoreAdapter(bus, codec, pool, logger),
		Projects:          project.NewService(pool, bus, projectRepo),
		Tasks:             task.NewService(pool, bus, taskRepo),
		ProjectRepository: projectRepo,
		TaskRepository:    taskRepo,
	}, nil
}

func loggingListener(logger *slog.Logger) eventstore.Listener {
	logger = logger.With(logattr.Component("event-log"))
	return eventstore.ListenerFunc(func(ctx context.Context, n eventstore.Notification) error {
		id := n.Key.AggregateIdentifier
		logger.DebugContext(ctx, "event recorded",
			logattr.AggregateType(id.Type),
			logattr.AggregateID(id.Identifier),
			logattr.Version(id.Version),
			slog.Bool("tombstone", n.Value == nil),
		)
		return nil
	})
}
