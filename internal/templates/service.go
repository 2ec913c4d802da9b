package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/internal/contracts"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

// Service defines template management operations.
type Service interface {
	Create(ctx context.Context, input CreateTemplateInput) (*models.ProposalTemplate, error)
	Update(ctx context.Context, input UpdateTemplateInput) (*models.ProposalTemplate, error)
	Get(ctx context.Context, profileID, templateID uuid.UUID) (*models.ProposalTemplate, error)
	List(ctx context.Context, profileID uuid.UUID) ([]models.ProposalTemplate, error)
	Delete(ctx context.Context, profileID, templateID uuid.UUID) error
}

// CreateTemplateInput captures a new reusable template.
type CreateTemplateInput struct {
	ProfileID              uuid.UUID
	Name                   string
	Content                string
	DefaultItems           []types.TemplateItem
	DefaultPaymentConfigID *uuid.UUID
	DefaultValidDays       *int
}

// UpdateTemplateInput carries the edited template state.
type UpdateTemplateInput struct {
	ProfileID              uuid.UUID
	TemplateID             uuid.UUID
	Name                   string
	Content                string
	DefaultItems           []types.TemplateItem
	DefaultPaymentConfigID *uuid.UUID
	DefaultValidDays       *int
}

type service struct {
	repo Repository
}

// NewService builds a template service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("templates repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateTemplateInput) (*models.ProposalTemplate, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template name required")
	}

	template := &models.ProposalTemplate{
		ProfileID:              input.ProfileID,
		Name:                   strings.TrimSpace(input.Name),
		Content:                input.Content,
		DefaultItems:           input.DefaultItems,
		DefaultPaymentConfigID: input.DefaultPaymentConfigID,
		DefaultValidDays:       input.DefaultValidDays,
		Variables:              types.StringSlice(contracts.ExtractVariables(input.Content)),
	}
	created, err := s.repo.Create(ctx, template)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create template")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateTemplateInput) (*models.ProposalTemplate, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template name required")
	}

	template, err := s.loadOwned(ctx, input.ProfileID, input.TemplateID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":                      strings.TrimSpace(input.Name),
		"content":                   input.Content,
		"default_items":             input.DefaultItems,
		"default_payment_config_id": input.DefaultPaymentConfigID,
		"default_valid_days":        input.DefaultValidDays,
		"variables":                 types.StringSlice(contracts.ExtractVariables(input.Content)),
	}
	if err := s.repo.Update(ctx, template.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update template")
	}
	return s.repo.FindByID(ctx, template.ID)
}

func (s *service) Get(ctx context.Context, profileID, templateID uuid.UUID) (*models.ProposalTemplate, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	return s.loadOwned(ctx, profileID, templateID)
}

func (s *service) List(ctx context.Context, profileID uuid.UUID) ([]models.ProposalTemplate, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	templates, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list templates")
	}
	return templates, nil
}

func (s *service) Delete(ctx context.Context, profileID, templateID uuid.UUID) error {
	if profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	template, err := s.loadOwned(ctx, profileID, templateID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, template.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete template")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, profileID, templateID uuid.UUID) (*models.ProposalTemplate, error) {
	if templateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template id required")
	}
	template, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load template")
	}
	if template.ProfileID != profileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "template does not belong to profile")
	}
	return template, nil
}
