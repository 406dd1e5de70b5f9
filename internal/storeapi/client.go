package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/auth"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 4096
	responseBodyMaxBytes int64 = 1 << 20
)

// Observer receives the latency and outcome of every store call.
type Observer interface {
	ObserveStoreCall(operation string, duration time.Duration, err error)
}

// Client talks to the store REST backend on behalf of the authenticated shopper.
// It implements the cart, address, orders and payments backends.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observer   Observer
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithObserver records call metrics.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds a store API client from config.
func NewClient(cfg config.StoreAPIConfig, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("store api base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse store api base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(base, "/"),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body any, out any) (err error) {
	start := c.now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveStoreCall(operation, c.now().Sub(start), err)
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, marshalErr, "marshal "+operation+" request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+operation+" request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := auth.AccessTokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store service unavailable").
			WithDetail("operation", operation)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return statusError(operation, resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyMaxBytes)).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+operation+" response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}

// statusError maps a non-2xx store response onto the service error taxonomy.
func statusError(operation string, status int, raw []byte) error {
	message := backendMessage(raw)
	cause := fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(raw)))

	var code pkgerrors.Code
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = pkgerrors.CodeValidation
	case status == http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case status == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case status == http.StatusConflict:
		code = pkgerrors.CodeConflict
	default:
		code = pkgerrors.CodeDependency
	}
	if code == pkgerrors.CodeDependency {
		message = "store service unavailable"
	} else if message == "" {
		message = pkgerrors.MetadataFor(code).PublicMessage
	}
	return pkgerrors.Wrap(code, cause, message).WithDetails(map[string]any{
		"operation":      operation,
		"backend_status": status,
	})
}

// backendMessage pulls a human readable message out of the store's error body.
// The store answers with {"error": ...}, {"detail": ...} or field error maps.
func backendMessage(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		if msg := stringOrFirst(body[key]); msg != "" {
			return msg
		}
	}
	for field, value := range body {
		if msg := stringOrFirst(value); msg != "" {
			return field + ": " + msg
		}
	}
	return ""
}

func stringOrFirst(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
