package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

// Proposal is a commercial offer issued by a profile to a prospective client.
// The public token is the only credential for the client-facing flow.
type Proposal struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID       uuid.UUID  `gorm:"column:profile_id;type:uuid;not null"`
	PublicToken     string     `gorm:"column:public_token;not null;uniqueIndex"`
	LeadID          *uuid.UUID `gorm:"column:lead_id;type:uuid"`
	TemplateID      *uuid.UUID `gorm:"column:template_id;type:uuid"`
	PaymentConfigID *uuid.UUID `gorm:"column:payment_config_id;type:uuid"`

	ProposalType enums.ProposalType   `gorm:"column:proposal_type;type:text;not null;default:'photo'"`
	Status       enums.ProposalStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Title        string               `gorm:"column:title;not null"`

	ClientName  string          `gorm:"column:client_name;not null;default:''"`
	ClientEmail string          `gorm:"column:client_email;not null;default:''"`
	ClientData  types.StringMap `gorm:"column:client_data;type:jsonb;serializer:json"`

	UseManualTotal bool            `gorm:"column:use_manual_total;not null;default:false"`
	ManualAmount   decimal.Decimal `gorm:"column:manual_amount;type:numeric(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`

	ContractContent    *string           `gorm:"column:contract_content"`
	ContractFileURL    *string           `gorm:"column:contract_file_url"`
	RequiredFields     types.StringSlice `gorm:"column:required_fields;type:jsonb;serializer:json"`
	ChangeRequestNotes *string           `gorm:"column:change_request_notes"`

	CoverVideoURL        *string           `gorm:"column:cover_video_url"`
	RevisionLimit        *int              `gorm:"column:revision_limit"`
	DeliveryFormats      types.StringSlice `gorm:"column:delivery_formats;type:jsonb;serializer:json"`
	EstimatedDurationMin *int              `gorm:"column:estimated_duration_min"`
	ReferenceLinks       types.StringSlice `gorm:"column:reference_links;type:jsonb;serializer:json"`
	SoundtrackLinks      types.StringSlice `gorm:"column:soundtrack_links;type:jsonb;serializer:json"`

	ReceiptURL *string `gorm:"column:receipt_url"`

	SentAt     *time.Time `gorm:"column:sent_at"`
	ViewedAt   *time.Time `gorm:"column:viewed_at"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	ValidUntil *time.Time `gorm:"column:valid_until"`

	Version int `gorm:"column:version;not null;default:0"`

	Items    []ProposalItem `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
	Contract *Contract      `gorm:"foreignKey:ProposalID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the proposal is past its validity date. Expiration
// is a derived view property only; the persisted status is never rewritten.
func (p *Proposal) IsExpired(now time.Time) bool {
	return p.ValidUntil != nil && p.ValidUntil.Before(now)
}
