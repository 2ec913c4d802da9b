package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ProfileID uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to photographer sessions.
// The public proposal flow never carries one of these; it authenticates by
// public-token possession alone.
type AccessTokenClaims struct {
	ProfileID uuid.UUID `json:"profile_id"`
	jwt.RegisteredClaims
}
