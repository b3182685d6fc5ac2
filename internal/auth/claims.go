package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// UserID is serialized as "id"; the activity logger and the storefront client both read it.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"id"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}
