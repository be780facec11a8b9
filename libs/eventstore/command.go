package eventstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEntityOutdated is returned by command handlers when the caller's copy
// of an aggregate is not the latest version.
var ErrEntityOutdated = errors.New("entity outdated")

func AssertVersionMatches(current, expected int64) error {
	if current != expected {
		return fmt.Errorf("%w: expected version %d, current version %d", ErrEntityOutdated, expected, current)
	}
	return nil
}

// RunCommand runs fn in one transaction whose outbox records share a
// transaction identifier. An identifier already in ctx is kept.
func RunCommand(ctx context.Context, tx Transactor, fn func(ctx context.Context) error) error {
	if _, ok := TransactionIdentifier(ctx); !ok {
		ctx = WithTransactionIdentifier(ctx, uuid.New())
	}
	return tx.Run(ctx, fn)
}
