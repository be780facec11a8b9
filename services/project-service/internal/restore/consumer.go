package restore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/kafkax"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
)

// Adapter is the part of eventstore.RestoreAdapter the consumer needs.
type Adapter interface {
	Consume(ctx context.Context, record eventstore.RawRecord) error
}

// Reader is the subset of *kafka.Reader used by the consumer.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

// Consumer replays a topic from its first offset into the restore adapter.
// Offsets are committed only after a record has been applied. The first
// failing record stops the consumer; whether to retry or skip it is left to
// the operator.
type Consumer struct {
	reader  Reader
	adapter Adapter
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewReader(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kafkax.SplitBrokers(cfg.Brokers),
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

func New(reader Reader, adapter Adapter, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		adapter: adapter,
		logger:  logger.With(logattr.Component("restore-consumer")),
		tracer:  otel.Tracer("kafka"),
	}
}

// Run blocks until ctx is cancelled or a record fails. Cancellation is not an error.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch record: %w", err)
		}
		if err := c.handle(ctx, msg); err != nil {
			meta := kafkax.ExtractRecordMeta(msg)
			c.logger.ErrorContext(ctx, "restore stopped on failing record",
				logattr.Error(err), logattr.Partition(meta.Partition), logattr.Offset(meta.Offset))
			return fmt.Errorf("restore %s/%d@%d: %w", meta.Topic, meta.Partition, meta.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset: %w", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	ctx, span := c.tracer.Start(kafkax.ExtractTraceContext(ctx, msg), "kafka.restore",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	err := c.adapter.Consume(ctx, eventstore.RawRecord{Key: msg.Key, Value: msg.Value})
	if err != nil && !errors.Is(err, context.Canceled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
