package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// RequestID assigns every request a correlation id, reusing a well-formed
// inbound header. The id is echoed on the response, stored on the context for
// outbound store calls, and attached to the request logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := inboundRequestID(r.Header.Get(requestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			var ctx context.Context
			if logg != nil {
				ctx = logg.WithRequestID(r.Context(), reqID)
			} else {
				ctx = logger.ContextWithRequestID(r.Context(), reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// inboundRequestID returns the client supplied id when it is short and
// printable, otherwise "".
func inboundRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLen {
		return ""
	}
	for _, c := range raw {
		if c < 0x21 || c > 0x7e {
			return ""
		}
	}
	return raw
}
