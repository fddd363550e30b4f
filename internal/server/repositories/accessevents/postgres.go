// Package accessevents persists third-party document access events.
// Rows are insert-only; the schema rejects UPDATE and DELETE.
package accessevents

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append stores e together with its suspicion verdict.
func (r *PostgresRepository) Append(ctx context.Context, e *models.DocumentAccessEvent) error {
	query := `INSERT INTO document_access_events
		(id, share_code_id, document_id, action, client_address, user_agent, occurred_at, suspicious, suspicious_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ShareCodeID, e.DocumentID, string(e.Action), e.ClientAddress, e.UserAgent,
		e.OccurredAt, e.Suspicious, e.SuspiciousReason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListSince returns at most limit events for one share code that occurred
// after since, newest first.
func (r *PostgresRepository) ListSince(ctx context.Context, shareCodeID string, since time.Time, limit int) ([]models.DocumentAccessEvent, error) {
	query := `SELECT id, share_code_id, document_id, action, client_address, user_agent, occurred_at, suspicious, suspicious_reason
		FROM document_access_events
		WHERE share_code_id = $1 AND occurred_at > $2
		ORDER BY occurred_at DESC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, shareCodeID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.DocumentAccessEvent
	for rows.Next() {
		var e models.DocumentAccessEvent
		var action string
		if err := rows.Scan(&e.ID, &e.ShareCodeID, &e.DocumentID, &action, &e.ClientAddress, &e.UserAgent,
			&e.OccurredAt, &e.Suspicious, &e.SuspiciousReason); err != nil {
			return nil, err
		}
		e.Action = models.AccessAction(action)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
