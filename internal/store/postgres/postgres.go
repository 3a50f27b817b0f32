package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Store is the PostgreSQL backend
type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate creates missing tables and seeds reference data
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	for _, c := range models.DefaultCategories {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3) ON CONFLICT (slug) DO NOTHING",
			uuid.New().String(), c.Name, c.Slug); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Slug, err)
		}
	}
	for _, b := range models.DefaultBrands {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO brands (id, name, slug) VALUES ($1, $2, $3) ON CONFLICT (slug) DO NOTHING",
			uuid.New().String(), b.Name, b.Slug); err != nil {
			return fmt.Errorf("failed to seed brand %s: %w", b.Slug, err)
		}
	}
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
