package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
)

// Config holds the inputs of the price rules. Every field is a plain decimal so
// the same values feed the review screen and the charged amount.
type Config struct {
	DiscountThreshold decimal.Decimal
	DiscountAmount    decimal.Decimal
	ShippingFee       decimal.Decimal
	TaxRate           decimal.Decimal
}

// DefaultConfig mirrors the storefront's historical constants.
func DefaultConfig() Config {
	return Config{
		DiscountThreshold: decimal.NewFromInt(1000),
		DiscountAmount:    decimal.NewFromInt(100),
		ShippingFee:       decimal.NewFromInt(100),
		TaxRate:           decimal.RequireFromString("0.05"),
	}
}

// ConfigFrom maps the environment pricing section onto Config.
func ConfigFrom(cfg config.PricingConfig) Config {
	return Config{
		DiscountThreshold: cfg.DiscountThreshold,
		DiscountAmount:    cfg.DiscountAmount,
		ShippingFee:       cfg.ShippingFee,
		TaxRate:           cfg.TaxRate,
	}
}

func (c Config) validate() error {
	for name, value := range map[string]decimal.Decimal{
		"discount threshold": c.DiscountThreshold,
		"discount amount":    c.DiscountAmount,
		"shipping fee":       c.ShippingFee,
		"tax rate":           c.TaxRate,
	} {
		if value.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// Breakdown is the full price of a cart. Values are unrounded.
type Breakdown struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Display rounds every field to whole currency units for presentation.
func (b Breakdown) Display() Breakdown {
	return Breakdown{
		Subtotal:   b.Subtotal.Round(0),
		Discount:   b.Discount.Round(0),
		Shipping:   b.Shipping.Round(0),
		Tax:        b.Tax.Round(0),
		GrandTotal: b.GrandTotal.Round(0),
	}
}

// MatchesTotal compares the grand total with an amount computed elsewhere, at
// minor-unit precision.
func (b Breakdown) MatchesTotal(total decimal.Decimal) bool {
	return b.GrandTotal.Round(2).Equal(total.Round(2))
}

// Calculator turns cart snapshots into price breakdowns. It has no state beyond
// its Config and is safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator validates cfg and returns a Calculator.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &Calculator{cfg: cfg}, nil
}

// Config returns the rules this calculator applies.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Compute prices snap. An empty cart prices to all zeros.
func (c *Calculator) Compute(snap cart.Snapshot) Breakdown {
	// An empty cart ships nothing, so the flat shipping fee is not charged either.
	if snap.IsEmpty() {
		return Breakdown{
			Subtotal:   decimal.Zero,
			Discount:   decimal.Zero,
			Shipping:   decimal.Zero,
			Tax:        decimal.Zero,
			GrandTotal: decimal.Zero,
		}
	}

	subtotal := snap.Subtotal()

	discount := decimal.Zero
	if subtotal.GreaterThanOrEqual(c.cfg.DiscountThreshold) {
		discount = c.cfg.DiscountAmount
	}

	// tax applies to the subtotal before the discount.
	tax := subtotal.Mul(c.cfg.TaxRate)
	shipping := c.cfg.ShippingFee

	return Breakdown{
		Subtotal:   subtotal,
		Discount:   discount,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Sub(discount).Add(shipping).Add(tax),
	}
}
