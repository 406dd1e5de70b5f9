package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

// Backend submits orders to the store API.
type Backend interface {
	CreateOrder(ctx context.Context, req BackendRequest) (BackendOrder, error)
}

// MetricsRecorder is the slice of checkout metrics used here.
type MetricsRecorder interface {
	IncOrderCreated(method string)
	IncPriceMismatch()
}

// Creator turns a reviewed cart into a backend order. It does not guard
// against duplicates; callers persist the returned id and skip it on retries.
type Creator interface {
	CreateOrder(ctx context.Context, input Input) (Order, error)
}

type creator struct {
	backend Backend
	calc    *pricing.Calculator
	metrics MetricsRecorder
	logg    *logger.Logger
	now     func() time.Time
}

func NewCreator(backend Backend, calc *pricing.Calculator, metrics MetricsRecorder, logg *logger.Logger) (Creator, error) {
	if backend == nil {
		return nil, fmt.Errorf("orders backend required")
	}
	if calc == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &creator{
		backend: backend,
		calc:    calc,
		metrics: metrics,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (c *creator) CreateOrder(ctx context.Context, input Input) (Order, error) {
	if input.Cart.IsEmpty() {
		return Order{}, errors.New(errors.CodeValidation, "cart is empty").WithDetail("redirect", "cart")
	}
	if strings.TrimSpace(input.Address.ID) == "" {
		return Order{}, errors.New(errors.CodeValidation, "select a delivery address")
	}
	if !input.Method.IsValid() {
		return Order{}, errors.New(errors.CodeValidation, "select a payment method")
	}

	breakdown := c.calc.Compute(input.Cart)

	created, err := c.backend.CreateOrder(ctx, BackendRequest{
		AddressID:     input.Address.ID,
		PaymentMethod: input.Method.WireValue(),
	})
	if err != nil {
		return Order{}, classifyFailure(err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return Order{}, errors.New(errors.CodeDependency, "order service returned no order id").
			WithDetail("charged", false)
	}

	order := Order{
		ID:            created.ID,
		Number:        created.Number,
		Address:       input.Address,
		Pricing:       breakdown,
		PaymentMethod: input.Method,
		Status:        input.Method.InitialOrderStatus(),
		BackendTotal:  created.Total,
		CreatedAt:     c.now(),
	}

	if c.metrics != nil {
		c.metrics.IncOrderCreated(input.Method.String())
	}
	if created.Total != nil && !breakdown.MatchesTotal(*created.Total) {
		if c.metrics != nil {
			c.metrics.IncPriceMismatch()
		}
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"order_id":      order.ID,
			"local_total":   breakdown.GrandTotal.StringFixed(2),
			"backend_total": created.Total.StringFixed(2),
		})
		c.logg.Warn(logCtx, "order total differs from computed price")
	}

	return order, nil
}

var stockMarkers = []string{"stock", "available", "sold out"}

// classifyFailure maps store failures onto checkout error codes. Every failure
// here happens before payment, so the shopper has not been charged.
func classifyFailure(err error) error {
	typed := errors.As(err)
	if typed == nil {
		return errors.Wrap(errors.CodeDependency, err, "could not create order").WithDetail("charged", false)
	}

	var out *errors.Error
	switch typed.Code() {
	case errors.CodeConflict:
		out = errors.Wrap(errors.CodeInventoryConflict, err, "some items are no longer available").
			WithDetail("redirect", "cart")
	case errors.CodeValidation:
		if mentionsStock(typed.Message()) {
			out = errors.Wrap(errors.CodeInventoryConflict, err, "some items are no longer available").
				WithDetail("redirect", "cart")
		} else {
			out = errors.Wrap(errors.CodeValidation, err, typed.Message())
		}
	case errors.CodeNotFound:
		out = errors.Wrap(errors.CodeValidation, err, "the selected address no longer exists")
	case errors.CodeUnauthorized, errors.CodeForbidden:
		out = typed
	default:
		out = errors.Wrap(errors.CodeDependency, err, "could not create order")
	}
	return out.WithDetail("charged", false)
}

func mentionsStock(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range stockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
