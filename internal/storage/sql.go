package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Dialect captures the few spots where Postgres and SQLite disagree.
type Dialect struct {
	Name     string
	BlobType string
	bind     func(n int) string
}

var (
	PostgresDialect = Dialect{
		Name:     "postgres",
		BlobType: "BYTEA",
		bind:     func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	SQLiteDialect = Dialect{
		Name:     "sqlite3",
		BlobType: "BLOB",
		bind:     func(int) string { return "?" },
	}
)

// SQLStore keeps every entity as one row of kv_entries.
type SQLStore struct {
	DB      *sql.DB
	dialect Dialect
}

func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, dialect: PostgresDialect}
}

func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, dialect: SQLiteDialect}
}

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS kv_entries (
		entry_key   TEXT PRIMARY KEY,
		entry_value ` + s.dialect.BlobType + ` NOT NULL,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure schema (%s): %w", s.dialect.Name, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx,
		"SELECT entry_value FROM kv_entries WHERE entry_key = "+s.dialect.bind(1), key).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_entries (entry_key, entry_value, updated_at)
		VALUES (`+s.dialect.bind(1)+`, `+s.dialect.bind(2)+`, CURRENT_TIMESTAMP)
		ON CONFLICT (entry_key) DO UPDATE
		SET entry_value = excluded.entry_value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx,
		"DELETE FROM kv_entries WHERE entry_key = "+s.dialect.bind(1), key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT entry_key FROM kv_entries WHERE entry_key LIKE `+s.dialect.bind(1)+` ESCAPE '\' ORDER BY entry_key`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		// sqlite LIKE folds ASCII case
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return keys, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
