// Package sharecodes stores third-party share codes in PostgreSQL.
// Categories are kept as a JSONB array so they round-trip through
// database/sql without driver-specific array types.
package sharecodes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

const selectColumns = `SELECT id, owner_user_id, raw_code, name, categories, created_at, expires_at,
	revoked_at, access_count, last_accessed_at FROM share_codes`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.ShareCode) error {
	cats, err := json.Marshal(c.Categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	query := `INSERT INTO share_codes (id, owner_user_id, raw_code, name, categories, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`

	_, err = r.db.ExecContext(ctx, query, c.ID, c.OwnerUserID, c.RawCode, c.Name, string(cats), c.CreatedAt, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ShareCode, error) {
	return r.getOne(ctx, selectColumns+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByRawCode(ctx context.Context, rawCode string) (*models.ShareCode, error) {
	return r.getOne(ctx, selectColumns+` WHERE raw_code = $1`, rawCode)
}

// ListByOwner returns every code the owner issued, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*models.ShareCode, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE owner_user_id = $1 ORDER BY created_at DESC`, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareCode
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Revoke stamps revoked_at once. A code that is already revoked, or that
// does not exist, yields common.ErrorInvalidState.
func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE share_codes SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrorInvalidState
	}
	return nil
}

// IncrementAccess bumps the access counter in one statement, so concurrent
// accesses never lose an increment to a read-modify-write race.
func (r *PostgresRepository) IncrementAccess(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE share_codes SET access_count = access_count + 1, last_accessed_at = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.ShareCode, error) {
	c, err := scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.ShareCode, error) {
	var c models.ShareCode
	var cats []byte
	var revokedAt, lastAccessedAt sql.NullTime

	if err := s.Scan(&c.ID, &c.OwnerUserID, &c.RawCode, &c.Name, &cats, &c.CreatedAt, &c.ExpiresAt,
		&revokedAt, &c.AccessCount, &lastAccessedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cats, &c.Categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	if lastAccessedAt.Valid {
		t := lastAccessedAt.Time
		c.LastAccessedAt = &t
	}
	return &c, nil
}
