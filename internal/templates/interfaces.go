package templates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
)

// Repository defines persistence operations for proposal templates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, template *models.ProposalTemplate) (*models.ProposalTemplate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProposalTemplate, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.ProposalTemplate, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}
