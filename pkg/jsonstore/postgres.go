package jsonstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const collectionsSchema = `CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresBackend stores each collection as one JSONB row. A commit runs in a
// single SQL transaction, so cascades spanning several collections land together.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend wraps an open database handle.
func NewPostgresBackend(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the collections table when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, collectionsSchema); err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

// Load fetches the collection payload; a missing row yields nil.
func (b *PostgresBackend) Load(ctx context.Context, name string) ([]byte, error) {
	const query = `SELECT payload FROM collections WHERE name = $1`
	var payload []byte
	if err := b.db.GetContext(ctx, &payload, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

// Commit upserts every staged collection inside one transaction.
func (b *PostgresBackend) Commit(ctx context.Context, writes []Write) error {
	const query = `INSERT INTO collections (name, payload, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin collections tx: %w", err)
	}
	now := time.Now().UTC()
	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, query, w.Name, w.Data, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert collection %s: %w", w.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit collections tx: %w", err)
	}
	return nil
}
