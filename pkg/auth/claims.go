package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/types"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Email  string
	JTI    string
}

// AccessTokenClaims mirrors the access tokens issued by the store backend.
type AccessTokenClaims struct {
	UserID    types.FlexibleID `json:"user_id"`
	Email     string           `json:"email,omitempty"`
	TokenType string           `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}
