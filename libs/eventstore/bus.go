package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
)

// Bus applies events to the snapshot store that owns them and, for online
// events, records them in the outbox and notifies in-process listeners.
// All of it happens in the caller's transaction.
type Bus struct {
	saver      Saver
	mappers    *MapperRegistry
	notifier   *Notifier
	stores     []SnapshotStore
	tombstones *tombstoneDispatcher
	logger     *slog.Logger
	tracer     trace.Tracer
}

type BusOption func(*Bus)

// WithTombstones enables EmitTombstone.
func WithTombstones() BusOption {
	return func(b *Bus) { b.tombstones = &tombstoneDispatcher{} }
}

func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) { b.logger = l }
}

func NewBus(saver Saver, mappers *MapperRegistry, notifier *Notifier, stores []SnapshotStore, opts ...BusOption) *Bus {
	b := &Bus{
		saver:    saver,
		mappers:  mappers,
		notifier: notifier,
		stores:   stores,
		logger:   slog.Default(),
		tracer:   otel.Tracer("eventstore"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.notifier == nil {
		b.notifier = NewNotifier()
	}
	b.logger = b.logger.With(logattr.Component("event-bus"))
	return b
}

// EmitEvent maps a domain event to its message at newVersion and emits it
// as an online event.
func (b *Bus) EmitEvent(ctx context.Context, event any, newVersion int64) error {
	mapper, err := b.mappers.Lookup(event)
	if err != nil {
		return err
	}
	k, err := mapper.MapToKey(event, newVersion)
	if err != nil {
		return fmt.Errorf("map key of %T: %w", event, err)
	}
	key, ok := k.(AggregateEventMessageKey)
	if !ok {
		return fmt.Errorf("mapper for %T produced %T, want an aggregate event key", event, k)
	}
	value, err := mapper.MapToValue(event, newVersion)
	if err != nil {
		return fmt.Errorf("map value of %T: %w", event, err)
	}
	return b.Emit(ctx, key, value, Online)
}

func (b *Bus) Emit(ctx context.Context, key AggregateEventMessageKey, value Message, src Source) (err error) {
	ctx, span := b.startSpan(ctx, "eventstore.emit", key, src)
	defer func() { endSpan(span, err) }()

	if value == nil {
		return fmt.Errorf("emit %v: nil value, tombstones go through EmitTombstone", key)
	}
	if err := key.AggregateIdentifier.validate(); err != nil {
		return err
	}
	store, err := b.route(key, value)
	if err != nil {
		return err
	}

	b.logger.DebugContext(ctx, "dispatching event", b.attrs(key, src)...)
	if err := store.HandleMessage(ctx, key, value, src); err != nil {
		return fmt.Errorf("apply %v: %w", key, err)
	}
	if src != Online {
		return nil
	}
	return b.record(ctx, key, value)
}

// EmitTombstone removes the snapshot of the aggregate in key. Online
// tombstones also write one outbox tombstone per version up to the key's
// version.
func (b *Bus) EmitTombstone(ctx context.Context, key AggregateEventMessageKey, src Source) (err error) {
	if b.tombstones == nil {
		return fmt.Errorf("%w: %v", ErrTombstoneUnsupported, key)
	}
	ctx, span := b.startSpan(ctx, "eventstore.emit_tombstone", key, src)
	defer func() { endSpan(span, err) }()

	if err := key.AggregateIdentifier.validate(); err != nil {
		return err
	}

	store, err := b.tombstones.route(b.stores, key)
	if err != nil {
		return err
	}

	b.logger.DebugContext(ctx, "dispatching tombstone", b.attrs(key, src)...)
	if err := store.HandleTombstoneMessage(ctx, key); err != nil {
		return fmt.Errorf("apply tombstone %v: %w", key, err)
	}
	if src != Online {
		return nil
	}
	return b.record(ctx, key, nil)
}

func (b *Bus) record(ctx context.Context, key AggregateEventMessageKey, value Message) error {
	if err := b.saver.Save(ctx, key, value); err != nil {
		return err
	}
	if err := b.notifier.Publish(ctx, Notification{Key: key, Value: value}); err != nil {
		return fmt.Errorf("notify %v: %w", key, err)
	}
	return nil
}

func (b *Bus) route(key AggregateEventMessageKey, value Message) (SnapshotStore, error) {
	var found SnapshotStore
	for _, s := range b.stores {
		if !s.HandlesMessage(key, value) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %v", ErrAmbiguousSnapshotStore, key)
		}
		found = s
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSnapshotStore, key)
	}
	return found, nil
}

type tombstoneDispatcher struct{}

func (tombstoneDispatcher) route(stores []SnapshotStore, key AggregateEventMessageKey) (TombstoneSnapshotStore, error) {
	var found TombstoneSnapshotStore
	for _, s := range stores {
		ts, ok := handlesTombstone(s, key)
		if !ok {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: tombstone %v", ErrAmbiguousSnapshotStore, key)
		}
		found = ts
	}
	if found == nil {
		return nil, fmt.Errorf("%w: tombstone %v", ErrNoSnapshotStore, key)
	}
	return found, nil
}

func (b *Bus) attrs(key AggregateEventMessageKey, src Source) []any {
	return []any{
		logattr.AggregateType(key.AggregateIdentifier.Type),
		logattr.AggregateID(key.AggregateIdentifier.Identifier),
		logattr.Version(key.AggregateIdentifier.Version),
		logattr.Source(src.String()),
	}
}

func (b *Bus) startSpan(ctx context.Context, name string, key AggregateEventMessageKey, src Source) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("aggregate.type", key.AggregateIdentifier.Type),
		attribute.String("aggregate.id", key.AggregateIdentifier.Identifier.String()),
		attribute.Int64("aggregate.version", key.AggregateIdentifier.Version),
		attribute.String("event.source", src.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
