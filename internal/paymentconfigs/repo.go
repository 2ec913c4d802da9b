package paymentconfigs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
)

// Repository defines persistence operations for payment configs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, config *models.PaymentConfig) (*models.PaymentConfig, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentConfig, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.PaymentConfig, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment configs repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, config *models.PaymentConfig) (*models.PaymentConfig, error) {
	if err := r.db.WithContext(ctx).Create(config).Error; err != nil {
		return nil, err
	}
	return config, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentConfig, error) {
	var config models.PaymentConfig
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.PaymentConfig, error) {
	var configs []models.PaymentConfig
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("label ASC").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentConfig{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PaymentConfig{}).Error
}
