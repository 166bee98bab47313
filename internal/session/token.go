package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Type  Role   `json:"type"`
}

// TokenIdentity reads the identity carried by an API token. The signature
// is not checked here; the persistence API verifies every token it receives.
func TokenIdentity(token string) (Identity, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("parsing token: %w", err)
	}

	email := claims.Email
	if email == "" {
		email = claims.Subject
	}
	if email == "" {
		return Identity{}, fmt.Errorf("token has no email claim")
	}

	role := claims.Type
	if role != RoleAdmin {
		role = RoleEmployee
	}

	return Identity{Type: role, Email: email}, nil
}
