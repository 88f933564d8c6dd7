package models

import "github.com/golang-jwt/jwt/v5"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Claims carries what the bearer token exposes about the operator. The
// front desk decodes it for display only; the server verifies signatures.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}
