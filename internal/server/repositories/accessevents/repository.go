package accessevents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Repository is the append-only document access trail.
type Repository interface {
	Append(ctx context.Context, e *models.DocumentAccessEvent) error
	ListSince(ctx context.Context, shareCodeID string, since time.Time, limit int) ([]models.DocumentAccessEvent, error)
}
