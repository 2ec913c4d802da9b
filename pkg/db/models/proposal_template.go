package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/lumina-backend/pkg/types"
)

// ProposalTemplate holds reusable defaults a profile can apply to a new
// proposal. Applying a template copies values out; the template itself is
// never mutated by application.
type ProposalTemplate struct {
	ID                     uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID              uuid.UUID            `gorm:"column:profile_id;type:uuid;not null;index"`
	Name                   string               `gorm:"column:name;not null"`
	Content                string               `gorm:"column:content;not null;default:''"`
	DefaultItems           []types.TemplateItem `gorm:"column:default_items;type:jsonb;serializer:json"`
	DefaultPaymentConfigID *uuid.UUID           `gorm:"column:default_payment_config_id;type:uuid"`
	DefaultValidDays       *int                 `gorm:"column:default_valid_days"`
	Variables              types.StringSlice    `gorm:"column:variables;type:jsonb;serializer:json"`
	CreatedAt              time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
