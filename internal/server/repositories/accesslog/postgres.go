// Package accesslog persists credential disclosure records. Rows are only
// ever inserted; the schema rejects UPDATE and DELETE.
package accesslog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.AccessLogEntry) error {
	query := `INSERT INTO access_log_entries (id, who, what, note, occurred_at) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, e.ID, e.Who, e.What, e.Note, e.OccurredAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByWhat returns up to limit entries about one subject, newest first.
func (r *PostgresRepository) ListByWhat(ctx context.Context, what string, limit int) ([]*models.AccessLogEntry, error) {
	query := `SELECT id, who, what, note, occurred_at FROM access_log_entries
		WHERE what = $1 ORDER BY occurred_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, what, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AccessLogEntry
	for rows.Next() {
		var e models.AccessLogEntry
		if err := rows.Scan(&e.ID, &e.Who, &e.What, &e.Note, &e.OccurredAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
