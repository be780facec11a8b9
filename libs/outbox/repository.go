package outbox

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/db"
)

// Migrations holds the outbox table schema for db.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const insertRecord = `
	INSERT INTO outbox (
		trace_header_key, trace_header_value, partition_number, event_key, event_value, transaction_identifier
	) VALUES ($1, $2, $3, $4, $5, $6)
`

// Writer persists outbox records in the caller's transaction.
type Writer interface {
	Insert(ctx context.Context, records ...Record) error
}

// Repository writes records to the outbox table. It never reads them back;
// the relay tailing the table owns that side.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Insert queues the inserts as one batch on the transaction carried by ctx.
func (r *Repository) Insert(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.MustTx(ctx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertRecord,
			rec.TraceHeaderKey, rec.TraceHeaderValue, rec.PartitionNumber,
			rec.EventKey, rec.EventValue, rec.TransactionIdentifier,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert outbox record %d: %w", i, err)
		}
	}
	return results.Close()
}
