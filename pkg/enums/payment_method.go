package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how the shopper intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodCOD,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// WireValue is the value the store backend expects in order payloads.
func (p PaymentMethod) WireValue() string {
	switch p {
	case PaymentMethodCard:
		return "credit_card"
	case PaymentMethodCOD:
		return "cod"
	default:
		return ""
	}
}

// InitialOrderStatus is the status an order starts in for this method.
func (p PaymentMethod) InitialOrderStatus() OrderStatus {
	if p == PaymentMethodCOD {
		return OrderStatusCODPending
	}
	return OrderStatusPending
}

// ParsePaymentMethod converts raw input into a PaymentMethod. The long forms
// "cash_on_delivery" and "credit_card" are accepted as aliases.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "cash_on_delivery":
		return PaymentMethodCOD, nil
	case "credit_card":
		return PaymentMethodCard, nil
	}
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
