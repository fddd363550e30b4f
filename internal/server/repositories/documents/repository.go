package documents

import (
	"context"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Repository reads document metadata. Uploads are handled elsewhere.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByOwnerCategories(ctx context.Context, ownerUserID string, categories []models.CategoryTag) ([]*models.Document, error)
}
