package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the identity embedded when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	Email        string
	Name         string
	IsSubscriber bool
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsSubscriber bool      `json:"is_subscriber"`
	jwt.RegisteredClaims
}
