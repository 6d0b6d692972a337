// Package sqlite persists progress in a local SQLite file. It suits a single
// household install where neither Redis nor Postgres is available.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
	"reading-hero-service/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS progress (
	key TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at_unix INTEGER NOT NULL
);`

type ProgressStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*ProgressStore, error) {
	if path == "" {
		path = "reading-hero.db"
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &ProgressStore{db: db}, nil
}

func (s *ProgressStore) LoadProgress(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM progress WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return []byte(data), nil
}

func (s *ProgressStore) SaveProgress(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (key, data, updated_at_unix) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at_unix = excluded.updated_at_unix`,
		key, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) Close() error {
	return s.db.Close()
}
