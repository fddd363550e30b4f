// Package documents provides PostgreSQL-backed read access to uploaded
// document metadata.
package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT id, owner_user_id, category, name, storage_key, created_at FROM documents WHERE id = $1`

	var d models.Document
	var category string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.OwnerUserID, &category, &d.Name, &d.StorageKey, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.Category = models.CategoryTag(category)
	return &d, nil
}

// ListByOwnerCategories returns the owner's documents whose category is in
// categories. An empty category list matches nothing.
func (r *PostgresRepository) ListByOwnerCategories(ctx context.Context, ownerUserID string, categories []models.CategoryTag) ([]*models.Document, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	cats, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("encode categories: %w", err)
	}

	query := `SELECT id, owner_user_id, category, name, storage_key, created_at FROM documents
		WHERE owner_user_id = $1 AND category IN (SELECT jsonb_array_elements_text($2::jsonb))
		ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query, ownerUserID, string(cats))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		var d models.Document
		var category string
		if err := rows.Scan(&d.ID, &d.OwnerUserID, &category, &d.Name, &d.StorageKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Category = models.CategoryTag(category)
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
