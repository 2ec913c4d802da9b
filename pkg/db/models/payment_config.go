package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/types"
)

// PaymentConfig is a payment-method preset a profile can attach to proposals.
// Referenced, not owned, by Proposal.
type PaymentConfig struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID    uuid.UUID               `gorm:"column:profile_id;type:uuid;not null;index"`
	Kind         enums.PaymentConfigKind `gorm:"column:kind;type:text;not null"`
	Label        string                  `gorm:"column:label;not null"`
	Instructions types.StringMap         `gorm:"column:instructions;type:jsonb;serializer:json"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
