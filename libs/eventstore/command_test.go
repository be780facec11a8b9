package eventstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore/eventstoretest"
)

func TestRunCommandTagsTransaction(t *testing.T) {
	tx := eventstoretest.NewTransactor()

	var seen []uuid.UUID
	capture := func(ctx context.Context) error {
		id, ok := eventstore.TransactionIdentifier(ctx)
		require.True(t, ok)
		assert.True(t, tx.InTransaction(ctx))
		seen = append(seen, id)
		return nil
	}
	require.NoError(t, eventstore.RunCommand(context.Background(), tx, capture))
	require.NoError(t, eventstore.RunCommand(context.Background(), tx, capture))
	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])

	given := uuid.New()
	ctx := eventstore.WithTransactionIdentifier(context.Background(), given)
	require.NoError(t, eventstore.RunCommand(ctx, tx, capture))
	assert.Equal(t, given, seen[2])
}

func TestAssertVersionMatches(t *testing.T) {
	assert.NoError(t, eventstore.AssertVersionMatches(3, 3))
	assert.ErrorIs(t, eventstore.AssertVersionMatches(3, 2), eventstore.ErrEntityOutdated)
}
