package auth

import (
	"context"
	"strings"
)

type accessTokenKey struct{}

// WithAccessToken stores the caller's raw bearer token so downstream store
// calls can act on the shopper's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, strings.TrimSpace(token))
}

// AccessTokenFromContext returns the bearer token stored by WithAccessToken.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(accessTokenKey{}).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
