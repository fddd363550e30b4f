// Package credentials stores sealed filing credentials in PostgreSQL.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/cryptox"
	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes rec in a single statement, superseding any earlier record
// for the same case. Stored blobs are replaced whole, never edited.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.CredentialRecord) error {
	query := `
		INSERT INTO credential_records (case_id, encrypted_username, encrypted_password, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (case_id)
		DO UPDATE SET
			encrypted_username = EXCLUDED.encrypted_username,
			encrypted_password = EXCLUDED.encrypted_password,
			created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		rec.CaseID, string(rec.EncryptedUsername), string(rec.EncryptedPassword), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByCaseID returns the case's current record or common.ErrorNotFound.
func (r *PostgresRepository) GetByCaseID(ctx context.Context, caseID string) (*models.CredentialRecord, error) {
	query := `SELECT case_id, encrypted_username, encrypted_password, created_at FROM credential_records WHERE case_id = $1`

	var rec models.CredentialRecord
	var user, pass string
	err := r.db.QueryRowContext(ctx, query, caseID).Scan(&rec.CaseID, &user, &pass, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.EncryptedUsername = cryptox.EncryptedSecret(user)
	rec.EncryptedPassword = cryptox.EncryptedSecret(pass)
	return &rec, nil
}
