package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

// PathUUID reads a chi URL parameter and parses it as a UUID.
func PathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, key+" required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetail("field", key)
	}
	return id, nil
}

// PathString reads a required chi URL parameter.
func PathString(r *http.Request, key string, maxLen int) (string, error) {
	raw := SanitizeString(chi.URLParam(r, key), maxLen)
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, key+" required")
	}
	return raw, nil
}
