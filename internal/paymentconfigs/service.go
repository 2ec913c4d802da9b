package paymentconfigs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

// Service manages a profile's payment-method presets.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PaymentConfig, error)
	Update(ctx context.Context, input UpdateInput) (*models.PaymentConfig, error)
	Get(ctx context.Context, profileID, configID uuid.UUID) (*models.PaymentConfig, error)
	List(ctx context.Context, profileID uuid.UUID) ([]models.PaymentConfig, error)
	Delete(ctx context.Context, profileID, configID uuid.UUID) error
}

// CreateInput captures a new payment preset.
type CreateInput struct {
	ProfileID    uuid.UUID
	Kind         enums.PaymentConfigKind
	Label        string
	Instructions map[string]string
}

// UpdateInput carries the edited preset.
type UpdateInput struct {
	ProfileID    uuid.UUID
	ConfigID     uuid.UUID
	Kind         enums.PaymentConfigKind
	Label        string
	Instructions map[string]string
}

type service struct {
	repo Repository
}

// NewService builds a payment config service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment configs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PaymentConfig, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment kind")
	}
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label required")
	}

	config := &models.PaymentConfig{
		ProfileID:    input.ProfileID,
		Kind:         input.Kind,
		Label:        strings.TrimSpace(input.Label),
		Instructions: types.StringMap(input.Instructions),
	}
	created, err := s.repo.Create(ctx, config)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment config")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.PaymentConfig, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment kind")
	}
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label required")
	}

	config, err := s.loadOwned(ctx, input.ProfileID, input.ConfigID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"kind":         input.Kind,
		"label":        strings.TrimSpace(input.Label),
		"instructions": types.StringMap(input.Instructions),
	}
	if err := s.repo.Update(ctx, config.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment config")
	}
	return s.repo.FindByID(ctx, config.ID)
}

func (s *service) Get(ctx context.Context, profileID, configID uuid.UUID) (*models.PaymentConfig, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.loadOwned(ctx, profileID, configID)
}

func (s *service) List(ctx context.Context, profileID uuid.UUID) ([]models.PaymentConfig, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	configs, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment configs")
	}
	return configs, nil
}

func (s *service) Delete(ctx context.Context, profileID, configID uuid.UUID) error {
	if profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	config, err := s.loadOwned(ctx, profileID, configID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, config.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment config")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, profileID, configID uuid.UUID) (*models.PaymentConfig, error) {
	if configID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment config id required")
	}
	config, err := s.repo.FindByID(ctx, configID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment config not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment config")
	}
	if config.ProfileID != profileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment config does not belong to profile")
	}
	return config, nil
}
