package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/lumina-backend/pkg/types"
)

// Contract is the immutable signature record created exactly once per signed
// proposal. Once written it is never updated; disputes resolve against it.
type Contract struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProposalID        uuid.UUID       `gorm:"column:proposal_id;type:uuid;not null;uniqueIndex"`
	SignedContent     string          `gorm:"column:signed_content;not null"`
	ClientData        types.StringMap `gorm:"column:client_data;type:jsonb;serializer:json"`
	SignatureImageURL string          `gorm:"column:signature_image_url;not null"`
	SignedAt          time.Time       `gorm:"column:signed_at;not null"`
	ClientIP          string          `gorm:"column:client_ip;not null;default:''"`
	UserAgent         string          `gorm:"column:user_agent;not null;default:''"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
