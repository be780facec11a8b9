package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/logattr"
)

// RestoreAdapter feeds records read from the topic back through the bus as
// replayed events. Replay rebuilds snapshots only; nothing is written to the
// outbox and no listener is notified.
type RestoreAdapter struct {
	bus    *Bus
	codec  *Codec
	tx     Transactor
	logger *slog.Logger
}

func NewRestoreAdapter(bus *Bus, codec *Codec, tx Transactor, logger *slog.Logger) *RestoreAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestoreAdapter{bus: bus, codec: codec, tx: tx, logger: logger.With(logattr.Component("restore"))}
}

// Consume applies one record in its own transaction. The caller must not be
// in a transaction. Errors are returned unchanged in meaning; retrying or
// skipping the record is up to the caller.
func (a *RestoreAdapter) Consume(ctx context.Context, record RawRecord) error {
	k, err := a.codec.DecodeKey(record.Key)
	if errors.Is(err, ErrNotAggregateKey) {
		a.logger.DebugContext(ctx, "ignoring record with foreign key kind", logattr.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	key, ok := k.(AggregateEventMessageKey)
	if !ok {
		a.logger.DebugContext(ctx, "ignoring non-aggregate record", logattr.RootContextID(k.RootContextIdentifier()))
		return nil
	}
	if a.tx.InTransaction(ctx) {
		return fmt.Errorf("restore %v: %w", key, ErrTransactionActive)
	}

	if record.Value == nil {
		return a.tx.Run(ctx, func(ctx context.Context) error {
			return a.bus.EmitTombstone(ctx, key, Restore)
		})
	}

	value, err := a.codec.DecodeValue(key.AggregateIdentifier.Type, record.Value)
	if err != nil {
		return fmt.Errorf("restore %v: %w", key, err)
	}
	return a.tx.Run(ctx, func(ctx context.Context) error {
		return a.bus.Emit(ctx, key, value, Restore)
	})
}
