package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
)

func snapshot(prices ...string) cart.Snapshot {
	items := make([]cart.Item, 0, len(prices))
	for i, price := range prices {
		items = append(items, cart.Item{
			ID:        string(rune('a' + i)),
			Quantity:  1,
			UnitPrice: decimal.RequireFromString(price),
		})
	}
	return cart.Snapshot{Items: items}
}

func newDefaultCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(DefaultConfig())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func TestComputeExamples(t *testing.T) {
	calc := newDefaultCalculator(t)

	cases := []struct {
		name     string
		snap     cart.Snapshot
		subtotal string
		discount string
		shipping string
		tax      string
		total    string
	}{
		{name: "above threshold", snap: snapshot("600", "500"), subtotal: "1100", discount: "100", shipping: "100", tax: "55", total: "1155"},
		{name: "below threshold", snap: snapshot("800"), subtotal: "800", discount: "0", shipping: "100", tax: "40", total: "940"},
		{name: "exactly threshold", snap: snapshot("1000"), subtotal: "1000", discount: "100", shipping: "100", tax: "50", total: "1050"},
		{name: "empty cart", snap: cart.Snapshot{}, subtotal: "0", discount: "0", shipping: "0", tax: "0", total: "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calc.Compute(tc.snap)
			assertDecimal(t, "subtotal", got.Subtotal, tc.subtotal)
			assertDecimal(t, "discount", got.Discount, tc.discount)
			assertDecimal(t, "shipping", got.Shipping, tc.shipping)
			assertDecimal(t, "tax", got.Tax, tc.tax)
			assertDecimal(t, "grand total", got.GrandTotal, tc.total)
		})
	}
}

func TestDiscountIsAStepFunction(t *testing.T) {
	calc := newDefaultCalculator(t)
	for _, price := range []string{"1000", "1000.01", "1500", "25000"} {
		got := calc.Compute(snapshot(price))
		assertDecimal(t, "discount at "+price, got.Discount, "100")
	}
	for _, price := range []string{"0.01", "500", "999.99"} {
		got := calc.Compute(snapshot(price))
		assertDecimal(t, "discount at "+price, got.Discount, "0")
	}
}

func TestGrandTotalIdentityAndDeterminism(t *testing.T) {
	calc := newDefaultCalculator(t)
	snap := cart.Snapshot{Items: []cart.Item{
		{ID: "1", Quantity: 3, UnitPrice: decimal.RequireFromString("333.33")},
		{ID: "2", Quantity: 2, UnitPrice: decimal.RequireFromString("49.95")},
	}}

	first := calc.Compute(snap)
	second := calc.Compute(snap)

	want := first.Subtotal.Sub(first.Discount).Add(first.Shipping).Add(first.Tax)
	if !first.GrandTotal.Equal(want) {
		t.Fatalf("grand total %s does not match identity %s", first.GrandTotal, want)
	}
	if !first.GrandTotal.Equal(second.GrandTotal) || !first.Tax.Equal(second.Tax) {
		t.Fatalf("compute is not deterministic: %+v vs %+v", first, second)
	}
}

func TestTaxIsNotRoundedMidComputation(t *testing.T) {
	calc := newDefaultCalculator(t)
	got := calc.Compute(snapshot("10.10"))
	assertDecimal(t, "tax", got.Tax, "0.505")
	assertDecimal(t, "display tax", got.Display().Tax, "1")
	assertDecimal(t, "display total", got.Display().GrandTotal, "111")
}

func TestMatchesTotal(t *testing.T) {
	calc := newDefaultCalculator(t)
	got := calc.Compute(snapshot("600", "500"))
	if !got.MatchesTotal(decimal.RequireFromString("1155.00")) {
		t.Fatal("expected totals to match")
	}
	if got.MatchesTotal(decimal.RequireFromString("1255.00")) {
		t.Fatal("expected mismatch to be reported")
	}
}

func TestNewCalculatorRejectsNegativeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShippingFee = decimal.NewFromInt(-1)
	if _, err := NewCalculator(cfg); err == nil {
		t.Fatal("expected negative shipping to be rejected")
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got)
	}
}
