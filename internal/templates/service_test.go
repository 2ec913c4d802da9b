package templates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
)

type stubTemplatesRepo struct {
	template *models.ProposalTemplate
	created  *models.ProposalTemplate
	updates  map[string]any
	deleted  bool
}

func (s *stubTemplatesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTemplatesRepo) Create(ctx context.Context, template *models.ProposalTemplate) (*models.ProposalTemplate, error) {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	s.created = template
	return template, nil
}

func (s *stubTemplatesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ProposalTemplate, error) {
	if s.template == nil || s.template.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.template, nil
}

func (s *stubTemplatesRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.ProposalTemplate, error) {
	if s.template == nil || s.template.ProfileID != profileID {
		return nil, nil
	}
	return []models.ProposalTemplate{*s.template}, nil
}

func (s *stubTemplatesRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubTemplatesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func TestCreateExtractsVariables(t *testing.T) {
	repo := &stubTemplatesRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	template, err := svc.Create(context.Background(), CreateTemplateInput{
		ProfileID: uuid.New(),
		Name:      "Casamento",
		Content:   "Olá {{nome}}, valor {{nome}} é {{valor_total}}",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(template.Variables) != 2 {
		t.Fatalf("expected 2 distinct variables got %v", template.Variables)
	}
	if template.Variables[0] != "nome" || template.Variables[1] != "valor_total" {
		t.Fatalf("unexpected variables %v", template.Variables)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := NewService(&stubTemplatesRepo{})
	_, err := svc.Create(context.Background(), CreateTemplateInput{ProfileID: uuid.New(), Name: " "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestGetForbiddenForOtherProfile(t *testing.T) {
	template := &models.ProposalTemplate{ID: uuid.New(), ProfileID: uuid.New(), Name: "X"}
	svc, _ := NewService(&stubTemplatesRepo{template: template})

	_, err := svc.Get(context.Background(), uuid.New(), template.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

func TestDeleteOwnedTemplate(t *testing.T) {
	profileID := uuid.New()
	template := &models.ProposalTemplate{ID: uuid.New(), ProfileID: profileID, Name: "X"}
	repo := &stubTemplatesRepo{template: template}
	svc, _ := NewService(repo)

	if err := svc.Delete(context.Background(), profileID, template.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected delete call")
	}
}
