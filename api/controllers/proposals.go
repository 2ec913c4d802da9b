package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luminastudio/lumina-backend/api/middleware"
	"github.com/luminastudio/lumina-backend/api/responses"
	"github.com/luminastudio/lumina-backend/api/validators"
	proposalsvc "github.com/luminastudio/lumina-backend/internal/proposals"
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/luminastudio/lumina-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
	"github.com/luminastudio/lumina-backend/pkg/logger"
	"github.com/luminastudio/lumina-backend/pkg/pagination"
)

type proposalItemRequest struct {
	Name      string `json:"name"`
	Details   string `json:"details,omitempty"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=0"`
	UnitPrice string `json:"unit_price,omitempty"`
	ShowPrice *bool  `json:"show_price,omitempty"`
}

type createProposalRequest struct {
	Title           string  `json:"title" validate:"required"`
	ProposalType    string  `json:"proposal_type" validate:"required"`
	LeadID          *string `json:"lead_id,omitempty"`
	TemplateID      *string `json:"template_id,omitempty"`
	PaymentConfigID *string `json:"payment_config_id,omitempty"`

	ClientName  string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty" validate:"omitempty,email"`

	UseManualTotal bool   `json:"use_manual_total"`
	ManualAmount   string `json:"manual_amount,omitempty"`
	DiscountAmount string `json:"discount_amount,omitempty"`

	ContractContent *string `json:"contract_content,omitempty"`
	ContractFileURL *string `json:"contract_file_url,omitempty"`
	ValidUntil      *string `json:"valid_until,omitempty"`

	CoverVideoURL        *string  `json:"cover_video_url,omitempty"`
	RevisionLimit        *int     `json:"revision_limit,omitempty" validate:"omitempty,min=0"`
	DeliveryFormats      []string `json:"delivery_formats,omitempty"`
	EstimatedDurationMin *int     `json:"estimated_duration_min,omitempty" validate:"omitempty,min=0"`
	ReferenceLinks       []string `json:"reference_links,omitempty"`
	SoundtrackLinks      []string `json:"soundtrack_links,omitempty"`

	Items []proposalItemRequest `json:"items,omitempty"`
}

type updateProposalRequest struct {
	Version int `json:"version" validate:"min=0"`

	Title           string  `json:"title" validate:"required"`
	PaymentConfigID *string `json:"payment_config_id,omitempty"`

	ClientName  string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty" validate:"omitempty,email"`

	UseManualTotal bool   `json:"use_manual_total"`
	ManualAmount   string `json:"manual_amount,omitempty"`
	DiscountAmount string `json:"discount_amount,omitempty"`

	ContractContent *string `json:"contract_content,omitempty"`
	ContractFileURL *string `json:"contract_file_url,omitempty"`
	ValidUntil      *string `json:"valid_until,omitempty"`

	CoverVideoURL        *string  `json:"cover_video_url,omitempty"`
	RevisionLimit        *int     `json:"revision_limit,omitempty" validate:"omitempty,min=0"`
	DeliveryFormats      []string `json:"delivery_formats,omitempty"`
	EstimatedDurationMin *int     `json:"estimated_duration_min,omitempty" validate:"omitempty,min=0"`
	ReferenceLinks       []string `json:"reference_links,omitempty"`
	SoundtrackLinks      []string `json:"soundtrack_links,omitempty"`

	Items []proposalItemRequest `json:"items,omitempty"`
}

type confirmPaymentRequest struct {
	ReceiptURL *string `json:"receipt_url,omitempty"`
}

type proposalItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Details    string          `json:"details,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ShowPrice  bool            `json:"show_price"`
	OrderIndex int             `json:"order_index"`
}

type proposalResponse struct {
	ID              uuid.UUID  `json:"id"`
	PublicToken     string     `json:"public_token"`
	LeadID          *uuid.UUID `json:"lead_id,omitempty"`
	TemplateID      *uuid.UUID `json:"template_id,omitempty"`
	PaymentConfigID *uuid.UUID `json:"payment_config_id,omitempty"`

	ProposalType enums.ProposalType   `json:"proposal_type"`
	Status       enums.ProposalStatus `json:"status"`
	Title        string               `json:"title"`
	Version      int                  `json:"version"`

	ClientName  string            `json:"client_name,omitempty"`
	ClientEmail string            `json:"client_email,omitempty"`
	ClientData  map[string]string `json:"client_data,omitempty"`

	UseManualTotal bool            `json:"use_manual_total"`
	ManualAmount   decimal.Decimal `json:"manual_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`

	ContractContent    *string  `json:"contract_content,omitempty"`
	ContractFileURL    *string  `json:"contract_file_url,omitempty"`
	RequiredFields     []string `json:"required_fields"`
	ChangeRequestNotes *string  `json:"change_request_notes,omitempty"`
	ReceiptURL         *string  `json:"receipt_url,omitempty"`

	CoverVideoURL        *string  `json:"cover_video_url,omitempty"`
	RevisionLimit        *int     `json:"revision_limit,omitempty"`
	DeliveryFormats      []string `json:"delivery_formats,omitempty"`
	EstimatedDurationMin *int     `json:"estimated_duration_min,omitempty"`
	ReferenceLinks       []string `json:"reference_links,omitempty"`
	SoundtrackLinks      []string `json:"soundtrack_links,omitempty"`

	Items  []proposalItemResponse `json:"items"`
	Signed bool                   `json:"signed"`

	SentAt     *time.Time `json:"sent_at,omitempty"`
	ViewedAt   *time.Time `json:"viewed_at,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CreateProposal handles draft creation for the authenticated profile.
func CreateProposal(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProposalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proposal, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, proposalFromModel(proposal))
	}
}

// ListProposals returns the cursor-paginated proposal list for the profile.
func ListProposals(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildProposalFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), profileID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetProposal returns the full proposal detail for its owner.
func GetProposal(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, proposalID, err := proposalScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proposal, err := svc.Get(r.Context(), profileID, proposalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, proposalFromModel(proposal))
	}
}

// UpdateProposal saves the full edited state, reconciling line items.
func UpdateProposal(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, proposalID, err := proposalScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProposalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput(profileID, proposalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proposal, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, proposalFromModel(proposal))
	}
}

// SendProposal transitions a draft to sent after the send gates pass.
func SendProposal(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return proposalAction(svc, logg, svcSend, "sent")
}

// CancelProposal moves any non-terminal proposal to cancelled.
func CancelProposal(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return proposalAction(svc, logg, svcCancel, "cancelled")
}

func svcSend(svc proposalsvc.Service) func(r *http.Request, profileID, proposalID uuid.UUID) error {
	return func(r *http.Request, profileID, proposalID uuid.UUID) error {
		return svc.Send(r.Context(), profileID, proposalID)
	}
}

func svcCancel(svc proposalsvc.Service) func(r *http.Request, profileID, proposalID uuid.UUID) error {
	return func(r *http.Request, profileID, proposalID uuid.UUID) error {
		return svc.Cancel(r.Context(), profileID, proposalID)
	}
}

func proposalAction(
	svc proposalsvc.Service,
	logg *logger.Logger,
	action func(proposalsvc.Service) func(r *http.Request, profileID, proposalID uuid.UUID) error,
	status string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, proposalID, err := proposalScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := action(svc)(r, profileID, proposalID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}

// ConfirmProposalPayment marks a signed proposal as paid.
func ConfirmProposalPayment(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, proposalID, err := proposalScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ConfirmPayment(r.Context(), proposalsvc.ConfirmPaymentInput{
			ProfileID:  profileID,
			ProposalID: proposalID,
			ReceiptURL: payload.ReceiptURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "paid"})
	}
}

// DeleteProposal removes an unsigned proposal and its items.
func DeleteProposal(svc proposalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proposal service unavailable"))
			return
		}

		profileID, proposalID, err := proposalScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), profileID, proposalID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func profileIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ProfileIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id")
	}
	return id, nil
}

func proposalScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	profileID, err := profileIDFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	proposalID, err := uuid.Parse(chi.URLParam(r, "proposalId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid proposal id")
	}
	return profileID, proposalID, nil
}

func buildProposalFilters(r *http.Request) (proposalsvc.ListFilters, error) {
	filters := proposalsvc.ListFilters{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseProposalStatus(raw)
		if err != nil {
			return proposalsvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		proposalType, err := enums.ParseProposalType(raw)
		if err != nil {
			return proposalsvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		filters.ProposalType = &proposalType
	}
	return filters, nil
}

func (p createProposalRequest) toCreateInput(profileID uuid.UUID) (proposalsvc.CreateProposalInput, error) {
	proposalType, err := enums.ParseProposalType(strings.TrimSpace(p.ProposalType))
	if err != nil {
		return proposalsvc.CreateProposalInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid proposal type")
	}

	leadID, err := parseOptionalUUID(p.LeadID, "lead_id")
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}
	templateID, err := parseOptionalUUID(p.TemplateID, "template_id")
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}
	paymentConfigID, err := parseOptionalUUID(p.PaymentConfigID, "payment_config_id")
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}

	manual, err := parseOptionalDecimal(p.ManualAmount, "manual_amount")
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}
	discount, err := parseOptionalDecimal(p.DiscountAmount, "discount_amount")
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}

	validUntil, err := parseOptionalTime(p.ValidUntil, "valid_until")
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}

	items, err := parseItemInputs(p.Items)
	if err != nil {
		return proposalsvc.CreateProposalInput{}, err
	}

	return proposalsvc.CreateProposalInput{
		ProfileID:            profileID,
		Title:                strings.TrimSpace(p.Title),
		ProposalType:         proposalType,
		LeadID:               leadID,
		TemplateID:           templateID,
		PaymentConfigID:      paymentConfigID,
		ClientName:           strings.TrimSpace(p.ClientName),
		ClientEmail:          strings.TrimSpace(p.ClientEmail),
		UseManualTotal:       p.UseManualTotal,
		ManualAmount:         manual,
		DiscountAmount:       discount,
		ContractContent:      p.ContractContent,
		ContractFileURL:      p.ContractFileURL,
		ValidUntil:           validUntil,
		CoverVideoURL:        p.CoverVideoURL,
		RevisionLimit:        p.RevisionLimit,
		DeliveryFormats:      p.DeliveryFormats,
		EstimatedDurationMin: p.EstimatedDurationMin,
		ReferenceLinks:       p.ReferenceLinks,
		SoundtrackLinks:      p.SoundtrackLinks,
		Items:                items,
	}, nil
}

func (p updateProposalRequest) toUpdateInput(profileID, proposalID uuid.UUID) (proposalsvc.UpdateProposalInput, error) {
	paymentConfigID, err := parseOptionalUUID(p.PaymentConfigID, "payment_config_id")
	if err != nil {
		return proposalsvc.UpdateProposalInput{}, err
	}

	manual, err := parseOptionalDecimal(p.ManualAmount, "manual_amount")
	if err != nil {
		return proposalsvc.UpdateProposalInput{}, err
	}
	discount, err := parseOptionalDecimal(p.DiscountAmount, "discount_amount")
	if err != nil {
		return proposalsvc.UpdateProposalInput{}, err
	}

	validUntil, err := parseOptionalTime(p.ValidUntil, "valid_until")
	if err != nil {
		return proposalsvc.UpdateProposalInput{}, err
	}

	items, err := parseItemInputs(p.Items)
	if err != nil {
		return proposalsvc.UpdateProposalInput{}, err
	}

	return proposalsvc.UpdateProposalInput{
		ProfileID:            profileID,
		ProposalID:           proposalID,
		Version:              p.Version,
		Title:                strings.TrimSpace(p.Title),
		PaymentConfigID:      paymentConfigID,
		ClientName:           strings.TrimSpace(p.ClientName),
		ClientEmail:          strings.TrimSpace(p.ClientEmail),
		UseManualTotal:       p.UseManualTotal,
		ManualAmount:         manual,
		DiscountAmount:       discount,
		ContractContent:      p.ContractContent,
		ContractFileURL:      p.ContractFileURL,
		ValidUntil:           validUntil,
		CoverVideoURL:        p.CoverVideoURL,
		RevisionLimit:        p.RevisionLimit,
		DeliveryFormats:      p.DeliveryFormats,
		EstimatedDurationMin: p.EstimatedDurationMin,
		ReferenceLinks:       p.ReferenceLinks,
		SoundtrackLinks:      p.SoundtrackLinks,
		Items:                items,
	}, nil
}

func parseItemInputs(items []proposalItemRequest) ([]proposalsvc.ItemInput, error) {
	result := make([]proposalsvc.ItemInput, 0, len(items))
	for _, item := range items {
		price, err := parseOptionalDecimal(item.UnitPrice, "unit_price")
		if err != nil {
			return nil, err
		}
		showPrice := true
		if item.ShowPrice != nil {
			showPrice = *item.ShowPrice
		}
		result = append(result, proposalsvc.ItemInput{
			Name:      item.Name,
			Details:   item.Details,
			Quantity:  item.Quantity,
			UnitPrice: price,
			ShowPrice: showPrice,
		})
	}
	return result, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &id, nil
}

func parseOptionalDecimal(raw, field string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return value, nil
}

func parseOptionalTime(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &value, nil
}

func proposalFromModel(p *models.Proposal) proposalResponse {
	items := make([]proposalItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, proposalItemResponse{
			ID:         item.ID,
			Name:       item.Name,
			Details:    item.Details,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			ShowPrice:  item.ShowPrice,
			OrderIndex: item.OrderIndex,
		})
	}

	return proposalResponse{
		ID:                   p.ID,
		PublicToken:          p.PublicToken,
		LeadID:               p.LeadID,
		TemplateID:           p.TemplateID,
		PaymentConfigID:      p.PaymentConfigID,
		ProposalType:         p.ProposalType,
		Status:               p.Status,
		Title:                p.Title,
		Version:              p.Version,
		ClientName:           p.ClientName,
		ClientEmail:          p.ClientEmail,
		ClientData:           p.ClientData,
		UseManualTotal:       p.UseManualTotal,
		ManualAmount:         p.ManualAmount,
		DiscountAmount:       p.DiscountAmount,
		TotalAmount:          p.TotalAmount,
		ContractContent:      p.ContractContent,
		ContractFileURL:      p.ContractFileURL,
		RequiredFields:       p.RequiredFields,
		ChangeRequestNotes:   p.ChangeRequestNotes,
		ReceiptURL:           p.ReceiptURL,
		CoverVideoURL:        p.CoverVideoURL,
		RevisionLimit:        p.RevisionLimit,
		DeliveryFormats:      p.DeliveryFormats,
		EstimatedDurationMin: p.EstimatedDurationMin,
		ReferenceLinks:       p.ReferenceLinks,
		SoundtrackLinks:      p.SoundtrackLinks,
		Items:                items,
		Signed:               p.Contract != nil,
		SentAt:               p.SentAt,
		ViewedAt:             p.ViewedAt,
		ApprovedAt:           p.ApprovedAt,
		ValidUntil:           p.ValidUntil,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
