package db

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

const migrationTable = "schema_migrations"

// migrationLock is the advisory lock key serializing migrations across
// instances starting at the same time.
const migrationLock int64 = 0x6d6967726174

func lockMigrations(ctx context.Context) error {
	tx, err := MustTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLock)
	return err
}

// Migrate applies every *.sql file under root in fsys, in lexical order, at
// most once. Each file runs in its own transaction together with the
// bookkeeping insert, so a failed file leaves no partial state behind.
func Migrate(ctx context.Context, pool *Pool, fsys fs.FS, root string) error {
	if pool == nil || pool.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if err := pool.Run(ctx, func(ctx context.Context) error {
		if err := lockMigrations(ctx); err != nil {
			return err
		}
		tx, err := MustTx(ctx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS `+migrationTable+` (
				name TEXT PRIMARY KEY,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`)
		return err
	}); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		name := path.Join(root, file)
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if err := pool.Run(ctx, func(ctx context.Context) error {
			return applyMigration(ctx, name, string(content))
		}); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, name string, sql string) error {
	if err := lockMigrations(ctx); err != nil {
		return err
	}
	tx, err := MustTx(ctx)
	if err != nil {
		return err
	}
	var applied bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+migrationTable+` WHERE name = $1)`, name,
	).Scan(&applied); err != nil {
		return err
	}
	if applied || strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := tx.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO `+migrationTable+` (name) VALUES ($1)`, name)
	return err
}
