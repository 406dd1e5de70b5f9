package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// PaymentIntentAPI is the slice of Stripe that card confirmation uses.
type PaymentIntentAPI interface {
	Confirm(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Client is a per-process Stripe API client. It never touches the
// package-level stripe.Key so tests and other clients stay isolated.
type Client struct {
	api *client.API
}

// NewClient validates the key against the configured environment and builds
// backends with the configured timeout and network retries.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Env)
	if err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     leveledLogger{logg: logg},
	}
	if cfg.Timeout > 0 {
		backendCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	api := client.New(apiKey, stripe.NewBackendsWithConfig(backendCfg))

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"stripe_env":         env,
			"stripe_max_retries": cfg.MaxRetries,
		}), "stripe client initialized")
	}
	return &Client{api: api}, nil
}

func (c *Client) PaymentIntents() PaymentIntentAPI {
	if c == nil || c.api == nil {
		return nil
	}
	return c.api.PaymentIntents
}

func normalizeEnv(raw string) (string, error) {
	switch env := strings.TrimSpace(strings.ToLower(raw)); env {
	case "", testEnv:
		return testEnv, nil
	case liveEnv:
		return liveEnv, nil
	default:
		return "", errInvalidStripeEnv
	}
}

// validateAPIKey refuses to pair a live key with the test environment and
// vice versa. Restricted keys (rk_) are accepted alongside secret keys.
func validateAPIKey(env, key string) error {
	for _, prefix := range []string{"sk_", "rk_"} {
		if strings.HasPrefix(key, prefix+env+"_") {
			return nil
		}
	}
	return fmt.Errorf("stripe environment %q requires an sk_%s_ or rk_%s_ key", env, env, env)
}

// leveledLogger routes stripe-go's internal logging through the service logger.
// Only warnings and errors are forwarded; request-level chatter stays out.
type leveledLogger struct {
	logg *logger.Logger
}

func (l leveledLogger) Debugf(string, ...any) {}

func (l leveledLogger) Infof(string, ...any) {}

func (l leveledLogger) Warnf(format string, v ...any) {
	if l.logg != nil {
		l.logg.Warn(context.Background(), "stripe: "+fmt.Sprintf(format, v...))
	}
}

func (l leveledLogger) Errorf(format string, v ...any) {
	if l.logg != nil {
		l.logg.Error(context.Background(), "stripe", fmt.Errorf(format, v...))
	}
}
