package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
)

// View is what the storefront renders for an attempt.
type View struct {
	ID                uuid.UUID            `json:"id"`
	Step              enums.CheckoutStep   `json:"step"`
	StepIndex         int                  `json:"step_index"`
	Addresses         []address.Address    `json:"addresses,omitempty"`
	SelectedAddressID *string              `json:"selected_address_id,omitempty"`
	SelectedAddress   *address.Address     `json:"selected_address,omitempty"`
	PaymentMethod     *enums.PaymentMethod `json:"payment_method,omitempty"`
	Cart              *cart.Snapshot       `json:"cart,omitempty"`
	Pricing           pricing.Breakdown    `json:"pricing"`
	DisplayPricing    pricing.Breakdown    `json:"display_pricing"`
	Order             *OrderSummary        `json:"order,omitempty"`
	Payment           *PaymentView         `json:"payment,omitempty"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty"`
}

// OrderSummary describes the order created for an attempt. OrderAddressID is
// the address the order ships to, which may differ from a later selection.
type OrderSummary struct {
	ID             string            `json:"id"`
	Number         string            `json:"number"`
	Status         enums.OrderStatus `json:"status"`
	OrderAddressID string            `json:"order_address_id"`
}

// PaymentView exposes card payment progress. The client secret is what the
// storefront needs to collect card details for the intent.
type PaymentView struct {
	State        enums.PaymentState `json:"state"`
	IntentID     *string            `json:"payment_intent_id,omitempty"`
	ClientSecret *string            `json:"client_secret,omitempty"`
	LastError    *string            `json:"last_error,omitempty"`
	Attempts     int                `json:"attempts"`
}

// Confirmation is shown once the attempt is complete.
type Confirmation struct {
	AttemptID     uuid.UUID           `json:"attempt_id"`
	OrderID       string              `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Status        enums.OrderStatus   `json:"status"`
	Total         decimal.Decimal     `json:"total"`
	CompletedAt   time.Time           `json:"completed_at"`
}

// CompletedEvent is published when an attempt reaches the complete step.
type CompletedEvent struct {
	AttemptID     string              `json:"attempt_id"`
	UserID        string              `json:"user_id"`
	OrderID       string              `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	GrandTotal    decimal.Decimal     `json:"grand_total"`
	CompletedAt   time.Time           `json:"completed_at"`
}

const EventTypeCompleted = "checkout.completed"
