package proposals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

// ItemInput is one edited line item as submitted by the editor. Items with an
// empty trimmed name are dropped during reconciliation, never rejected.
type ItemInput struct {
	Name      string
	Details   string
	Quantity  int
	UnitPrice decimal.Decimal
	ShowPrice bool
}

// CreateProposalInput captures a new proposal draft.
type CreateProposalInput struct {
	ProfileID       uuid.UUID
	Title           string
	ProposalType    enums.ProposalType
	LeadID          *uuid.UUID
	TemplateID      *uuid.UUID
	PaymentConfigID *uuid.UUID

	ClientName  string
	ClientEmail string

	UseManualTotal bool
	ManualAmount   decimal.Decimal
	DiscountAmount decimal.Decimal

	ContractContent *string
	ContractFileURL *string
	ValidUntil      *time.Time

	CoverVideoURL        *string
	RevisionLimit        *int
	DeliveryFormats      []string
	EstimatedDurationMin *int
	ReferenceLinks       []string
	SoundtrackLinks      []string

	Items []ItemInput
}

// UpdateProposalInput carries the full edited state of an existing proposal.
// Version must match the stored row or the update is rejected as a conflict.
type UpdateProposalInput struct {
	ProfileID  uuid.UUID
	ProposalID uuid.UUID
	Version    int

	Title           string
	PaymentConfigID *uuid.UUID

	ClientName  string
	ClientEmail string

	UseManualTotal bool
	ManualAmount   decimal.Decimal
	DiscountAmount decimal.Decimal

	ContractContent *string
	ContractFileURL *string
	ValidUntil      *time.Time

	CoverVideoURL        *string
	RevisionLimit        *int
	DeliveryFormats      []string
	EstimatedDurationMin *int
	ReferenceLinks       []string
	SoundtrackLinks      []string

	Items []ItemInput
}

// ListFilters describe the inputs supported by the proposal list.
type ListFilters struct {
	Status       *enums.ProposalStatus
	ProposalType *enums.ProposalType
	Query        string
}

// ProposalSummary is the row shape returned in the photographer's list.
type ProposalSummary struct {
	ID           uuid.UUID            `json:"id"`
	PublicToken  string               `json:"public_token"`
	Title        string               `json:"title"`
	ProposalType enums.ProposalType   `json:"proposal_type"`
	Status       enums.ProposalStatus `json:"status"`
	ClientName   string               `json:"client_name"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	Expired      bool                 `json:"expired"`
	SentAt       *time.Time           `json:"sent_at,omitempty"`
	ValidUntil   *time.Time           `json:"valid_until,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ProposalList wraps the paginated proposals plus the next page cursor.
type ProposalList struct {
	Proposals  []ProposalSummary `json:"proposals"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ConfirmPaymentInput marks a signed proposal as paid.
type ConfirmPaymentInput struct {
	ProfileID  uuid.UUID
	ProposalID uuid.UUID
	ReceiptURL *string
}

// PublicItem is the client-facing rendering of one line item. UnitPrice and
// Subtotal are omitted for items priced as included.
type PublicItem struct {
	Name      string           `json:"name"`
	Details   string           `json:"details,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Subtotal  *decimal.Decimal `json:"subtotal,omitempty"`
	ShowPrice bool             `json:"show_price"`
}

// PublicProposal is the client-facing view resolved from a public token. It
// never exposes internal ids beyond the proposal's own.
type PublicProposal struct {
	ID             uuid.UUID            `json:"id"`
	Title          string               `json:"title"`
	ProposalType   enums.ProposalType   `json:"proposal_type"`
	Status         enums.ProposalStatus `json:"status"`
	Expired        bool                 `json:"expired"`
	ClientName     string               `json:"client_name"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	Items          []PublicItem         `json:"items"`
	HasContract    bool                 `json:"has_contract"`
	ContractFile   *string              `json:"contract_file_url,omitempty"`
	RequiredFields []string             `json:"required_fields"`
	ClientData     types.StringMap      `json:"client_data,omitempty"`
	ChangeNotes    *string              `json:"change_request_notes,omitempty"`
	ValidUntil     *time.Time           `json:"valid_until,omitempty"`
	ViewedAt       *time.Time           `json:"viewed_at,omitempty"`
	ApprovedAt     *time.Time           `json:"approved_at,omitempty"`
	SignedAt       *time.Time           `json:"signed_at,omitempty"`
}

// RequestChangesInput carries the client's change notes.
type RequestChangesInput struct {
	PublicToken string
	Notes       string
}

// ClientDataInput captures the public form submission ahead of signing.
type ClientDataInput struct {
	PublicToken string
	ClientName  string
	ClientEmail string
	Values      map[string]string
}

// SignInput carries everything required to execute the signing transition.
type SignInput struct {
	PublicToken      string
	ClientName       string
	ClientData       map[string]string
	SignatureImage   []byte
	ContentType      string
	AcceptedContract bool
	ClientIP         string
	UserAgent        string
}

// ReceiptInput uploads a payment receipt against a signed proposal.
type ReceiptInput struct {
	PublicToken string
	Receipt     []byte
	ContentType string
}
