package accesslog

import (
	"context"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Repository is the append-only credential disclosure log.
type Repository interface {
	Append(ctx context.Context, e *models.AccessLogEntry) error
	ListByWhat(ctx context.Context, what string, limit int) ([]*models.AccessLogEntry, error)
}
