package proposals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a proposals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if err := r.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return nil, err
	}
	return proposal, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Contract").
		Where("id = ?", id).
		First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *repository) FindByPublicToken(ctx context.Context, token string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Contract").
		Where("public_token = ?", token).
		First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *repository) List(ctx context.Context, profileID uuid.UUID, params pagination.Params, filters ListFilters) (*ProposalList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("profile_id = ?", profileID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ProposalType != nil {
		query = query.Where("proposal_type = ?", *filters.ProposalType)
	}
	if filters.Query != "" {
		pattern := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(client_name) LIKE ?)", pattern, pattern)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Proposal
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	now := time.Now().UTC()
	summaries := make([]ProposalSummary, 0, len(rows))
	for i := range rows {
		p := rows[i]
		summaries = append(summaries, ProposalSummary{
			ID:           p.ID,
			PublicToken:  p.PublicToken,
			Title:        p.Title,
			ProposalType: p.ProposalType,
			Status:       p.Status,
			ClientName:   p.ClientName,
			TotalAmount:  p.TotalAmount,
			Expired:      p.IsExpired(now),
			SentAt:       p.SentAt,
			ValidUntil:   p.ValidUntil,
			CreatedAt:    p.CreatedAt,
		})
	}
	return &ProposalList{Proposals: summaries, NextCursor: nextCursor}, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateWithVersion applies updates only when the stored version still matches
// and bumps it, returning the affected row count so callers can detect a stale
// editor.
func (r *repository) UpdateWithVersion(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (int64, error) {
	merged := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["version"] = version + 1

	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND version = ?", id, version).
		Updates(merged)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReplaceItems swaps the proposal's full item set. Callers run this inside a
// transaction so a failed insert never leaves a partial set visible.
func (r *repository) ReplaceItems(ctx context.Context, proposalID uuid.UUID, items []models.ProposalItem) error {
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Delete(&models.ProposalItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ProposalID = proposalID
		items[i].OrderIndex = i
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", id).
		Delete(&models.ProposalItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Proposal{}).Error
}

func (r *repository) CountPastValidityByStatus(ctx context.Context, status enums.ProposalStatus, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("valid_until IS NOT NULL AND valid_until < ?", now).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
