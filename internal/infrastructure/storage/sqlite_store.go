package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
)

const kvTable = "kv_store"

const schemaSQL = `CREATE TABLE IF NOT EXISTS kv_store (
	doc_key    TEXT PRIMARY KEY,
	doc_value  TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore persists documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.KeyValueStore = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := NewSQLiteStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wires an existing sql.DB; call Migrate before first use.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the key-value table when missing.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate kv_store: %w", err)
	}
	return nil
}

// Get returns the stored document for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := sq.Select("doc_value").From(kvTable).Where(sq.Eq{"doc_key": key}).ToSql()
	if err != nil {
		return "", false, &domain.StorageError{Op: "get", Key: key, Err: err}
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &domain.StorageError{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

// Set upserts the document for key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query, args, err := sq.Insert(kvTable).
		Columns("doc_key", "doc_value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(doc_key) DO UPDATE SET doc_value = excluded.doc_value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return &domain.StorageError{Op: "set", Key: key, Err: err}
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Remove deletes the document for key; removing an absent key is not an error.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	query, args, err := sq.Delete(kvTable).Where(sq.Eq{"doc_key": key}).ToSql()
	if err != nil {
		return &domain.StorageError{Op: "remove", Key: key, Err: err}
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Clear deletes every document.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	query, args, err := sq.Delete(kvTable).ToSql()
	if err != nil {
		return &domain.StorageError{Op: "clear", Err: err}
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StorageError{Op: "clear", Err: err}
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
