package eventstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/maintenance"
	otelx "github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/otel"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/outbox"
)

// Transactor runs functions in a database transaction carried by the context.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	InTransaction(ctx context.Context) bool
}

// Partitioner maps a root context identifier to a topic partition.
type Partitioner interface {
	Partition(rootContextID uuid.UUID) int
}

// Saver records a message in the outbox.
type Saver interface {
	Save(ctx context.Context, key MessageKey, value Message) error
}

// Store writes serialized messages to the outbox. It only joins the caller's
// transaction and never opens one.
type Store struct {
	tx          Transactor
	writer      outbox.Writer
	codec       *Codec
	partitioner Partitioner
	maintenance maintenance.Checker
	limits      outbox.Limits
}

type StoreOption func(*Store)

func WithMaintenance(c maintenance.Checker) StoreOption {
	return func(s *Store) { s.maintenance = c }
}

func WithLimits(l outbox.Limits) StoreOption {
	return func(s *Store) { s.limits = l }
}

func NewStore(tx Transactor, writer outbox.Writer, codec *Codec, partitioner Partitioner, opts ...StoreOption) *Store {
	s := &Store{
		tx:          tx,
		writer:      writer,
		codec:       codec,
		partitioner: partitioner,
		maintenance: maintenance.StaticFlag(false),
		limits:      outbox.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists one outbox record for key and value. A nil value on an
// aggregate key at version N persists a tombstone for each version 0..N so
// that compaction removes the complete history of the aggregate.
func (s *Store) Save(ctx context.Context, key MessageKey, value Message) error {
	blocked, err := s.maintenance.Blocked(ctx)
	if err != nil {
		return fmt.Errorf("check maintenance flag: %w", err)
	}
	if blocked {
		return ErrOperationsBlocked
	}
	if !s.tx.InTransaction(ctx) {
		return fmt.Errorf("save %v: %w", key, ErrNoTransaction)
	}

	if aggKey, ok := key.(AggregateEventMessageKey); ok {
		if err := aggKey.AggregateIdentifier.validate(); err != nil {
			return err
		}
	}

	partition := s.partitioner.Partition(key.RootContextIdentifier())
	traceValue := otelx.TraceParent(ctx)
	var txID *uuid.UUID
	if id, ok := TransactionIdentifier(ctx); ok {
		txID = &id
	}

	keys := []MessageKey{key}
	if aggKey, ok := key.(AggregateEventMessageKey); ok && value == nil {
		keys = make([]MessageKey, 0, aggKey.AggregateIdentifier.Version+1)
		for v := int64(0); v <= aggKey.AggregateIdentifier.Version; v++ {
			keys = append(keys, aggKey.WithVersion(v))
		}
	}

	encodedValue, err := s.codec.EncodeValue(value)
	if err != nil {
		return fmt.Errorf("encode value for %v: %w", key, err)
	}

	records := make([]outbox.Record, 0, len(keys))
	for _, k := range keys {
		encodedKey, err := s.codec.EncodeKey(k)
		if err != nil {
			return fmt.Errorf("encode key %v: %w", k, err)
		}
		rec := outbox.Record{
			TraceHeaderKey:        otelx.TraceParentHeader,
			TraceHeaderValue:      traceValue,
			PartitionNumber:       partition,
			EventKey:              encodedKey,
			EventValue:            encodedValue,
			TransactionIdentifier: txID,
		}
		if err := s.limits.Validate(rec); err != nil {
			return fmt.Errorf("save %v: %w", k, err)
		}
		records = append(records, rec)
	}
	return s.writer.Insert(ctx, records...)
}
