package credentials

import (
	"context"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Repository persists encrypted credential records, one per case.
type Repository interface {
	Upsert(ctx context.Context, rec *models.CredentialRecord) error
	GetByCaseID(ctx context.Context, caseID string) (*models.CredentialRecord, error)
}
