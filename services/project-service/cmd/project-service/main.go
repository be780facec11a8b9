package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/db"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/httpx"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/kafkax"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/maintenance"
	otelx "github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/otel"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/runtime"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/services/project-service/internal/app"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/services/project-service/internal/restore"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", logattr.Error(err))
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelCfg, err := otelx.ConfigFromEnv(cfg.ServiceName)
	if err != nil {
		logger.Error("otel config invalid", logattr.Error(err))
		os.Exit(1)
	}
	otelShutdown, err := otelx.Setup(ctx, otelCfg)
	if err != nil {
		logger.Error("otel setup failed", logattr.Error(err))
	} else {
		defer func() { _ = runtime.Shutdown(5*time.Second, otelShutdown) }()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{})
	if err != nil {
		logger.Error("db connection failed", logattr.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := app.Migrate(ctx, pool); err != nil {
		logger.Error("db migration failed", logattr.Error(err))
		os.Exit(1)
	}

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var checker maintenance.Checker = maintenance.StaticFlag(cfg.OperationsBlocked)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		checker = maintenance.NewRedisFlag(client, cfg.OperationsBlockedKey)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: maintenance.ReadyCheck(client)})
	}

	service, err := app.New(pool, cfg, checker, logger)
	if err != nil {
		logger.Error("service wiring failed", logattr.Error(err))
		os.Exit(1)
	}

	if cfg.KafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers, cfg.ProjectTopic, cfg.ProjectTopicPartitions)})
	}
	if cfg.RestoreEnabled {
		consumer := restore.New(restore.NewReader(restore.Config{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.RestoreGroupID,
			Topic:   cfg.ProjectTopic,
		}), service.Restore, logger)
		go func() {
			logger.Info("restore consumer starting", "topic", cfg.ProjectTopic, "group_id", cfg.RestoreGroupID)
			if err := consumer.Run(ctx); err != nil {
				logger.Error("restore consumer stopped", logattr.Error(err))
				return
			}
			logger.Info("restore consumer stopped")
		}()
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(handler, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", logattr.Error(err))
		}
	}()

	<-ctx.Done()
	if err := runtime.Shutdown(10*time.Second, srv.Shutdown); err != nil {
		logger.Error("http server shutdown error", logattr.Error(err))
	}
	logger.Info("http server stopped")
}
