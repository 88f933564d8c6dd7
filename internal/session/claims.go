package session

import (
	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// DisplayName extracts an operator name from the bearer token for the nav
// chrome. The token is decoded without verification; the server alone
// validates it, so nothing here may be used for authorization.
func DisplayName(token string) string {
	claims := &models.Claims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}

	if claims.Username != "" {
		return claims.Username
	}

	return claims.Subject
}
