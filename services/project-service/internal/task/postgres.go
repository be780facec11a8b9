package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/db"
)

type PostgresRepository struct {
	pool *db.Pool
}

func NewPostgresRepository(pool *db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Find(ctx context.Context, id uuid.UUID) (Task, error) {
	var t Task
	err := r.pool.Querier(ctx).QueryRow(ctx, `
		SELECT identifier, version, project_identifier, name, description, status
		FROM task_snapshot
		WHERE identifier = $1
	`, id).Scan(&t.Identifier, &t.Version, &t.Project, &t.Name, &t.Description, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (r *PostgresRepository) ListByProject(ctx context.Context, project uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Querier(ctx).Query(ctx, `
		SELECT identifier, version, project_identifier, name, description, status
		FROM task_snapshot
		WHERE project_identifier = $1
		ORDER BY name, identifier
	`, project)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Task, error) {
		var t Task
		err := row.Scan(&t.Identifier, &t.Version, &t.Project, &t.Name, &t.Description, &t.Status)
		return t, err
	})
}

func (r *PostgresRepository) Insert(ctx context.Context, t Task) error {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO task_snapshot (identifier, version, project_identifier, name, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.Identifier, t.Version, t.Project, t.Name, t.Description, t.Status)
	return err
}

// Update writes t only if the stored row is still at expectedVersion.
func (r *PostgresRepository) Update(ctx context.Context, t Task, expectedVersion int64) error {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE task_snapshot
		SET version = $2, name = $3, description = $4, status = $5
		WHERE identifier = $1 AND version = $6
	`, t.Identifier, t.Version, t.Name, t.Description, t.Status, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update task %s at version %d: %d rows affected", t.Identifier, expectedVersion, tag.RowsAffected())
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM task_snapshot WHERE identifier = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) DeleteByProject(ctx context.Context, project uuid.UUID) (int64, error) {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM task_snapshot WHERE project_identifier = $1`, project)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
