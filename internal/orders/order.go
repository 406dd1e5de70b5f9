package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
)

// Order is the checkout's record of an order created on the store backend.
// The address and pricing are frozen copies taken when the order was created.
type Order struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Address       address.Address     `json:"address"`
	Pricing       pricing.Breakdown   `json:"pricing"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Status        enums.OrderStatus   `json:"status"`
	BackendTotal  *decimal.Decimal    `json:"backend_total,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Input is everything needed to create an order.
type Input struct {
	Cart    cart.Snapshot
	Address address.Address
	Method  enums.PaymentMethod
}

// BackendRequest is the payload sent to the store backend.
type BackendRequest struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

// BackendOrder is what the store backend reports about a created order.
type BackendOrder struct {
	ID     string
	Number string
	Total  *decimal.Decimal
	Status string
}
