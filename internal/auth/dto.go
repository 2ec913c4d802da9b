package auth

import (
	"github.com/luminastudio/lumina-backend/pkg/db/models"
	"github.com/google/uuid"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries the fields needed to open a photographer account.
type RegisterRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
}

// RefreshRequest carries the refresh token to be rotated.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileSummary is the account shape returned by auth endpoints.
type ProfileSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
}

// LoginResponse contains the token pair and profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Profile      ProfileSummary `json:"profile"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func summaryFromModel(profile *models.Profile) ProfileSummary {
	return ProfileSummary{
		ID:           profile.ID,
		Name:         profile.Name,
		Email:        profile.Email,
		BusinessName: profile.BusinessName,
		Phone:        profile.Phone,
	}
}
