package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the issuing account (photographer or real-estate agent) that
// owns proposals, templates, and payment configs.
type Profile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	BusinessName string    `gorm:"column:business_name;not null;default:''"`
	Phone        string    `gorm:"column:phone;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
