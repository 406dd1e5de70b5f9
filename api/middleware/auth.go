package middleware

import (
	"net/http"
	"strings"

	"github.com/Anshid-ck/cloth-shop-sub001/api/responses"
	pkgAuth "github.com/Anshid-ck/cloth-shop-sub001/pkg/auth"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

// Auth validates the store-issued bearer token and seeds the request context
// with the shopper id and the raw token for calls back into the store API.
// Every rejection carries redirect=login so the storefront can send the
// shopper to sign in.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			claims, parseErr := pkgAuth.ParseAccessToken(cfg, token)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, parseErr, "session expired or invalid").WithDetail("redirect", "login"))
				return
			}

			userID := claims.UserID.String()
			ctx := pkgAuth.WithAccessToken(WithUserID(r.Context(), userID), token)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	switch {
	case scheme == "":
		return "", loginRequired("missing credentials")
	case !found || !strings.EqualFold(scheme, "bearer"):
		return "", loginRequired("unsupported authorization scheme")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", loginRequired("missing credentials")
	}
	return token, nil
}

func loginRequired(msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, msg).WithDetail("redirect", "login")
}
