package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Anshid-ck/cloth-shop-sub001/api/responses"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
	pkgredis "github.com/Anshid-ck/cloth-shop-sub001/pkg/redis"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	maxInFlight           = 2 * time.Minute
	idempotencyHeader     = "Idempotency-Key"
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	// required rejects requests without a key; otherwise they pass through unrecorded.
	required bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/checkout")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/checkout/", "/advance"), required: true},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/checkout/", "/payment/confirm"), required: true},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/checkout/", "/place-order"), required: true},
}

// idempotencyRecord is either a claim held while the first request runs
// (Pending) or the response it produced.
type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the first recorded response for a repeated
// Idempotency-Key on the checkout's forward transitions. The key is claimed
// before the handler runs so a double submit cannot execute twice; the claim is
// released when the outcome is not worth replaying.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r.Method, requestPath(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idempotencyKey == "" {
				if rule.required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithField(ctx, "idempotency_key", idempotencyKey)
			}

			if existing, lookupErr := loadRecord(ctx, store, key); lookupErr != nil {
				responses.WriteError(ctx, logg, w, lookupErr)
				return
			} else if existing != nil {
				respondExisting(ctx, logg, w, existing, requestHash)
				return
			}

			claim, _ := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
			claimed, claimErr := store.SetNX(ctx, key, string(claim), inFlightTTL(ttl))
			if claimErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, claimErr, "claim idempotency key"))
				return
			}
			if !claimed {
				responses.WriteError(ctx, logg, w, errInFlight())
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// The shopper may have gone away; the outcome is still recorded.
			ctx = context.WithoutCancel(ctx)
			status := defaultStatus(rec.status)
			if !replayable(status) {
				if delErr := store.Del(ctx, key); delErr != nil {
					logError(ctx, logg, "release idempotency key", delErr)
				}
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(ctx, logg, "marshal idempotency record", marshalErr)
				return
			}
			if setErr := store.Set(ctx, key, string(payload), ttl); setErr != nil {
				logError(ctx, logg, "persist idempotency record", setErr)
			}
		})
	}
}

func loadRecord(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*idempotencyRecord, error) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && stored == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	record, err := decodeRecord(stored)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return record, nil
}

func respondExisting(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, record *idempotencyRecord, requestHash string) {
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, errInFlight())
	default:
		if logg != nil {
			logg.Info(ctx, "idempotency.replay")
		}
		writeStoredResponse(w, record)
	}
}

func errInFlight() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress")
}

// inFlightTTL bounds how long a crashed request can hold its key.
func inFlightTTL(ttl time.Duration) time.Duration {
	if ttl < maxInFlight {
		return ttl
	}
	return maxInFlight
}

// replayable keeps retryable failures (lock contention, dependency outages,
// declines) out of the record so the same key can be retried.
func replayable(status int) bool {
	if status >= http.StatusInternalServerError {
		return false
	}
	switch status {
	case http.StatusConflict, http.StatusPaymentRequired, http.StatusTooManyRequests:
		return false
	}
	return true
}

func buildScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

// requestPath is matched instead of the chi route pattern, which only holds
// the mount prefix while group middleware runs.
func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	path := r.URL.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func matchRule(method, path string) (idempotencyRule, bool) {
	if path == "" {
		return idempotencyRule{}, false
	}
	for _, rule := range idempotencyRules {
		if rule.method != method {
			continue
		}
		if rule.matcher(path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
