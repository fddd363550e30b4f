// Package cases provides PostgreSQL-backed read access to filing cases.
package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the case or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FilingCase, error) {
	query := `SELECT id, owner_user_id, assigned_handler_id, status, created_at FROM filing_cases WHERE id = $1`

	var c models.FilingCase
	var status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.OwnerUserID, &c.AssignedHandlerID, &status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Status = models.CaseStatus(status)
	return &c, nil
}
