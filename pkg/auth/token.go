package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/types"
)

var (
	signingMethod = jwt.SigningMethodHS256

	errNoSecret = errors.New("jwt secret is required")
)

// MintAccessToken issues a signed access token. The store backend owns real
// logins; this is used by local tooling and tests.
func MintAccessToken(cfg config.JWTConfig, now time.Time, ttl time.Duration, payload AccessTokenPayload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", errNoSecret
	case ttl <= 0:
		return "", fmt.Errorf("jwt ttl must be positive")
	case strings.TrimSpace(payload.UserID) == "":
		return "", fmt.Errorf("user id is required")
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(signingMethod, AccessTokenClaims{
		UserID:    types.FlexibleID(payload.UserID),
		Email:     payload.Email,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, expiry and issuer, then checks that the
// token is an access token naming a user.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errNoSecret
	}

	claims := &AccessTokenClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, secretKey(cfg.Secret), parserOptions(cfg)...); err != nil {
		return nil, err
	}

	// Tokens without a type predate typed tokens and are treated as access tokens.
	if claims.TokenType != "" && claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("%s tokens cannot be used for api access", claims.TokenType)
	}
	if claims.UserID.IsZero() {
		return nil, fmt.Errorf("token missing user_id")
	}
	return claims, nil
}

func parserOptions(cfg config.JWTConfig) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return opts
}

func secretKey(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}
}
