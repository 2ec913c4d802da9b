package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luminastudio/lumina-backend/api/responses"
	"github.com/luminastudio/lumina-backend/api/validators"
	proposalsvc "github.com/luminastudio/lumina-backend/internal/proposals"
	templatesvc "github.com/luminastudio/lumina-backend/internal/templates"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/logger"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

type templateRequest struct {
	Name                   string               `json:"name" validate:"required"`
	Content                string               `json:"content,omitempty"`
	DefaultItems           []types.TemplateItem `json:"default_items,omitempty"`
	DefaultPaymentConfigID *string              `json:"default_payment_config_id,omitempty"`
	DefaultValidDays       *int                 `json:"default_valid_days,omitempty" validate:"omitempty,min=1"`
}

type templateResponse struct {
	ID                     uuid.UUID            `json:"id"`
	Name                   string               `json:"name"`
	Content                string               `json:"content,omitempty"`
	DefaultItems           []types.TemplateItem `json:"default_items,omitempty"`
	DefaultPaymentConfigID *uuid.UUID           `json:"default_payment_config_id,omitempty"`
	DefaultValidDays       *int                 `json:"default_valid_days,omitempty"`
	Variables              []string             `json:"variables"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
}

type appliedDraftResponse struct {
	ContractContent *string                `json:"contract_content,omitempty"`
	PaymentConfigID *uuid.UUID             `json:"payment_config_id,omitempty"`
	ValidUntil      *time.Time             `json:"valid_until,omitempty"`
	Items           []proposalItemResponse `json:"items"`
}

// CreateTemplate registers a reusable proposal template.
func CreateTemplate(svc templatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload templateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentConfigID, err := parseOptionalUUID(payload.DefaultPaymentConfigID, "default_payment_config_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		template, err := svc.Create(r.Context(), templatesvc.CreateTemplateInput{
			ProfileID:              profileID,
			Name:                   strings.TrimSpace(payload.Name),
			Content:                payload.Content,
			DefaultItems:           payload.DefaultItems,
			DefaultPaymentConfigID: paymentConfigID,
			DefaultValidDays:       payload.DefaultValidDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, templateFromModel(template))
	}
}

// ListTemplates lists the profile's templates ordered by name.
func ListTemplates(svc templatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		templates, err := svc.List(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := make([]templateResponse, 0, len(templates))
		for i := range templates {
			result = append(result, templateFromModel(&templates[i]))
		}
		responses.WriteSuccess(w, result)
	}
}

// GetTemplate returns one template owned by the profile.
func GetTemplate(svc templatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		profileID, templateID, err := templateScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		template, err := svc.Get(r.Context(), profileID, templateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, templateFromModel(template))
	}
}

// UpdateTemplate saves the edited template and re-extracts its variables.
func UpdateTemplate(svc templatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		profileID, templateID, err := templateScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload templateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentConfigID, err := parseOptionalUUID(payload.DefaultPaymentConfigID, "default_payment_config_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		template, err := svc.Update(r.Context(), templatesvc.UpdateTemplateInput{
			ProfileID:              profileID,
			TemplateID:             templateID,
			Name:                   strings.TrimSpace(payload.Name),
			Content:                payload.Content,
			DefaultItems:           payload.DefaultItems,
			DefaultPaymentConfigID: paymentConfigID,
			DefaultValidDays:       payload.DefaultValidDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, templateFromModel(template))
	}
}

// DeleteTemplate removes a template owned by the profile.
func DeleteTemplate(svc templatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		profileID, templateID, err := templateScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), profileID, templateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ApplyTemplate merges a template's defaults over a proposal's current draft
// state and returns the result. Nothing is persisted; the editor saves the
// merged draft through the regular update endpoint.
func ApplyTemplate(templates templatesvc.Service, proposals proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if templates == nil || proposals == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "template service unavailable"))
			return
		}

		profileID, proposalID, err := proposalScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		templateID, err := uuid.Parse(chi.URLParam(r, "templateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid template id"))
			return
		}

		proposal, err := proposals.Get(r.Context(), profileID, proposalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		template, err := templates.Get(r.Context(), profileID, templateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft := templatesvc.Apply(template, draftFromProposal(proposal), time.Now())

		items := make([]proposalItemResponse, 0, len(draft.Items))
		for i, item := range draft.Items {
			items = append(items, proposalItemResponse{
				Name:       item.Name,
				Details:    item.Details,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				ShowPrice:  item.ShowPrice,
				OrderIndex: i,
			})
		}

		responses.WriteSuccess(w, appliedDraftResponse{
			ContractContent: draft.ContractContent,
			PaymentConfigID: draft.PaymentConfigID,
			ValidUntil:      draft.ValidUntil,
			Items:           items,
		})
	}
}

func templateScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	profileID, err := profileIDFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	templateID, err := uuid.Parse(chi.URLParam(r, "templateId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid template id")
	}
	return profileID, templateID, nil
}

func draftFromProposal(p *models.Proposal) templatesvc.Draft {
	items := make([]proposalsvc.ItemInput, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, proposalsvc.ItemInput{
			Name:      item.Name,
			Details:   item.Details,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ShowPrice: item.ShowPrice,
		})
	}
	return templatesvc.Draft{
		ContractContent: p.ContractContent,
		PaymentConfigID: p.PaymentConfigID,
		ValidUntil:      p.ValidUntil,
		Items:           items,
	}
}

func templateFromModel(t *models.ProposalTemplate) templateResponse {
	return templateResponse{
		ID:                     t.ID,
		Name:                   t.Name,
		Content:                t.Content,
		DefaultItems:           t.DefaultItems,
		DefaultPaymentConfigID: t.DefaultPaymentConfigID,
		DefaultValidDays:       t.DefaultValidDays,
		Variables:              t.Variables,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}
