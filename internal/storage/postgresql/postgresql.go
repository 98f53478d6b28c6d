package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.db
}

// EnsureSchema creates missing tables. Existing tables and rows are left as is.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	const op = "storage.postgresql.EnsureSchema"

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Version returns the server's version() string.
func (s *Storage) Version(ctx context.Context) (string, error) {
	const op = "storage.postgresql.Version"

	var version string
	if err := s.db.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return version, nil
}

func (s *Storage) Stop() {
	s.db.Close()
}
