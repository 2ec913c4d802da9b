package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProposalItem is one line of a proposal. Items are replaced wholesale on
// every proposal update, so their ids are not stable across edits.
type ProposalItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProposalID uuid.UUID       `gorm:"column:proposal_id;type:uuid;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	Details    string          `gorm:"column:details;not null;default:''"`
	Quantity   int             `gorm:"column:quantity;not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	ShowPrice  bool            `gorm:"column:show_price;not null;default:true"`
	OrderIndex int             `gorm:"column:order_index;not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
