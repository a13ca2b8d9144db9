package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists values in a PostgreSQL table, typically the same
// database the annotation deployment uses.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	s := &PostgresStore{db: db, logger: logger}
	if err := s.ensureTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureTable() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS "ModelState" (
		project TEXT NOT NULL,
		key     TEXT NOT NULL,
		value   TEXT NOT NULL,
		PRIMARY KEY (project, key)
	)`)
	if err != nil {
		return fmt.Errorf("ensure ModelState table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, project, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM "ModelState" WHERE project = $1 AND key = $2 LIMIT 1`,
		project, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query model state '%s/%s': %w", project, key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, project, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO "ModelState" (project, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (project, key) DO UPDATE SET value = EXCLUDED.value`,
		project, key, value)
	if err != nil {
		return fmt.Errorf("upsert model state '%s/%s': %w", project, key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
