package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/auth"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
)

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsOtherSchemes(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	token := mintTestToken(t, cfg, "42")
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{token, "Basic " + token, "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.Code)
		}
		if !strings.Contains(resp.Body.String(), `"redirect":"login"`) {
			t.Fatalf("header %q: expected login redirect detail, got %s", header, resp.Body.String())
		}
	}
}

func TestAuthRejectsForeignIssuer(t *testing.T) {
	token := mintTestToken(t, config.JWTConfig{Secret: "secret", Issuer: "someone-else"}, "42")
	handler := Auth(config.JWTConfig{Secret: "secret", Issuer: "issuer"}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	token := mintTestToken(t, cfg, "42")

	var captured struct {
		user  string
		token string
	}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.token, _ = auth.AccessTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != "42" {
		t.Fatalf("expected user 42 in context, got %q", captured.user)
	}
	if captured.token != token {
		t.Fatal("expected raw token forwarded in context")
	}
}

func TestUserIDFromNilContext(t *testing.T) {
	//nolint:staticcheck
	if got := UserIDFromContext(nil); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}
	if got := UserIDFromContext(WithUserID(context.Background(), "7")); got != "7" {
		t.Fatalf("expected 7, got %q", got)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID string) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), time.Hour, auth.AccessTokenPayload{UserID: userID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
