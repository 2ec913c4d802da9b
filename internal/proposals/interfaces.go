package proposals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
)

// Repository defines persistence operations for proposal tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	FindByPublicToken(ctx context.Context, token string) (*models.Proposal, error)
	List(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters ListFilters) (*ProposalList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (int64, error)
	ReplaceItems(ctx context.Context, proposalID uuid.UUID, items []models.ProposalItem) error
	CreateContract(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountPastValidityByStatus(ctx context.Context, status enums.ProposalStatus, now time.Time) (int64, error)
}
