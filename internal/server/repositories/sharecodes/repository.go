package sharecodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Repository persists share codes.
type Repository interface {
	Create(ctx context.Context, c *models.ShareCode) error
	GetByID(ctx context.Context, id string) (*models.ShareCode, error)
	GetByRawCode(ctx context.Context, rawCode string) (*models.ShareCode, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]*models.ShareCode, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	IncrementAccess(ctx context.Context, id string, at time.Time) error
}
