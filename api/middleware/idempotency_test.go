package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
		delete(f.ttls, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

const (
	confirmPath = "/api/v1/checkout/6f1c/payment/confirm"
	advancePath = "/api/v1/checkout/6f1c/advance"
)

func TestRuleSelection(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		ok       bool
		required bool
	}{
		{"begin", http.MethodPost, "/api/v1/checkout", true, false},
		{"advance", http.MethodPost, advancePath, true, true},
		{"confirm", http.MethodPost, confirmPath, true, true},
		{"place order", http.MethodPost, "/api/v1/checkout/6f1c/place-order", true, true},
		{"view", http.MethodGet, "/api/v1/checkout/6f1c", false, false},
		{"select address", http.MethodPut, "/api/v1/checkout/6f1c/address", false, false},
	}

	for _, tt := range tests {
		rule, ok := matchRule(tt.method, tt.path)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && rule.required != tt.required {
			t.Fatalf("%s: expected required=%v got %v", tt.name, tt.required, rule.required)
		}
	}
}

func TestIdempotencyMiddlewareRequiresHeaderForOrderAndPayment(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{confirmPath, advancePath} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"payment_method_id":"pm_1"}`))
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", path, resp.Code)
		}
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareOptionalHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be recorded without a key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, 2*time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_1"}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected first response 200 got %d", resp.Code)
	}

	replay := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_1"}`))
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected replay status 200 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for _, ttl := range store.ttls {
		if ttl != 2*time.Hour {
			t.Fatalf("expected configured ttl, got %v", ttl)
		}
	}
}

func TestIdempotencyMiddlewareDoesNotRecordRetryableFailures(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	statuses := []int{http.StatusPaymentRequired, http.StatusOK}
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statuses[calls])
		calls++
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_1"}`))
		req.Header.Set("Idempotency-Key", "retry-me")
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		if resp.Code != statuses[i] {
			t.Fatalf("attempt %d: expected %d got %d", i, statuses[i], resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("declined attempt should not be replayed, handler ran %d times", calls)
	}
}

func TestIdempotencyMiddlewareRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	var inner *httptest.ResponseRecorder
	var handler http.Handler
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// A duplicate arrives while the first request is still running.
			dup := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_1"}`))
			dup.Header.Set("Idempotency-Key", "double-click")
			inner = httptest.NewRecorder()
			mw(handler).ServeHTTP(inner, dup)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_1"}`))
	req.Header.Set("Idempotency-Key", "double-click")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", resp.Code)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to get 409, got %+v", inner)
	}
	if calls != 1 {
		t.Fatalf("duplicate must not reach the handler, ran %d times", calls)
	}
}

func TestIdempotencyMiddlewareReleasesClaimOnFailure(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	req := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "outage")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if len(store.data) != 0 {
		t.Fatalf("expected claim to be released, store has %v", store.data)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_1"}`))
	req.Header.Set("Idempotency-Key", "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{"payment_method_id":"pm_2"}`))
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyScopeIsPerUser(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for _, user := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodPost, confirmPath, strings.NewReader(`{}`))
		req = req.WithContext(WithUserID(req.Context(), user))
		req.Header.Set("Idempotency-Key", "shared")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("keys must not collide across users, handler ran %d times", calls)
	}
}
