package cases

import (
	"context"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Repository reads filing cases. Cases are created and advanced by the
// intake workflow, so nothing here writes.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.FilingCase, error)
}
