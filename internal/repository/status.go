// Package repository provides persistence implementations for the backend
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicate is returned when a status check id is already stored.
var ErrDuplicate = errors.New("status check already exists")

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresStatusRepository stores status checks in PostgreSQL.
type PostgresStatusRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresStatusRepository creates a new PostgresStatusRepository using
// the provided *sql.DB.
func NewPostgresStatusRepository(db *sql.DB) *PostgresStatusRepository {
	return &PostgresStatusRepository{DB: db}
}

// CreateStatusCheck inserts check.
func (s *PostgresStatusRepository) CreateStatusCheck(ctx context.Context, check models.StatusCheck) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, created_at) VALUES ($1, $2, $3)`,
		check.ID, check.ClientName, check.Timestamp,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, check.ID)
	}
	if err != nil {
		return fmt.Errorf("CreateStatusCheck: %w", err)
	}
	return nil
}

// ListStatusChecks returns at most limit status checks, oldest first.
func (s *PostgresStatusRepository) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, client_name, created_at FROM status_checks ORDER BY created_at LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListStatusChecks: %w", err)
	}
	defer rows.Close()

	checks := []models.StatusCheck{}
	for rows.Next() {
		var c models.StatusCheck
		if err := rows.Scan(&c.ID, &c.ClientName, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("ListStatusChecks scan: %w", err)
		}
		c.Timestamp = c.Timestamp.UTC()
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStatusChecks rows: %w", err)
	}
	return checks, nil
}
