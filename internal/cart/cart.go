package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one line of the shopper's cart as reported by the store backend.
type Item struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	VariantID *string         `json:"variant_id,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal is unit price times quantity, unrounded.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot is a read-only, ordered copy of the cart taken at one point in time.
type Snapshot struct {
	Items []Item `json:"items"`
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Subtotal sums the line totals.
func (s Snapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Quantity is the number of units across all lines.
func (s Snapshot) Quantity() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// AddItemInput is the payload for putting a product in the cart.
type AddItemInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	VariantID *string `json:"variant_id,omitempty"`
	Size      string  `json:"size,omitempty" validate:"omitempty,max=10"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=99"`
}

// UpdateItemInput changes the quantity of an existing line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}
