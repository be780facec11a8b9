package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/db"
)

type PostgresRepository struct {
	pool *db.Pool
}

func NewPostgresRepository(pool *db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Find(ctx context.Context, id uuid.UUID) (Project, error) {
	var p Project
	err := r.pool.Querier(ctx).QueryRow(ctx, `
		SELECT identifier, version, title, description
		FROM project_snapshot
		WHERE identifier = $1
	`, id).Scan(&p.Identifier, &p.Version, &p.Title, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Insert(ctx context.Context, p Project) error {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO project_snapshot (identifier, version, title, description)
		VALUES ($1, $2, $3, $4)
	`, p.Identifier, p.Version, p.Title, p.Description)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, p Project, expectedVersion int64) error {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE project_snapshot
		SET version = $2, title = $3, description = $4
		WHERE identifier = $1 AND version = $5
	`, p.Identifier, p.Version, p.Title, p.Description, expectedVersion)
	return expectOneRow(tag, err, "update", p.Identifier, expectedVersion)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	tx, err := db.MustTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM project_snapshot WHERE identifier = $1 AND version = $2`, id, expectedVersion)
	return expectOneRow(tag, err, "delete", id, expectedVersion)
}

func expectOneRow(tag pgconn.CommandTag, err error, op string, id uuid.UUID, version int64) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%s project %s at version %d: %d rows affected", op, id, version, tag.RowsAffected())
	}
	return nil
}
