package enums

import "fmt"

// PaymentState tracks a card payment from intent creation to a final outcome.
type PaymentState string

const (
	PaymentStateUninitialized   PaymentState = "uninitialized"
	PaymentStateIntentRequested PaymentState = "intent_requested"
	PaymentStateIntentReady     PaymentState = "intent_ready"
	PaymentStateConfirming      PaymentState = "confirming"
	PaymentStateSucceeded       PaymentState = "succeeded"
	PaymentStateFailed          PaymentState = "failed"
)

var validPaymentStates = []PaymentState{
	PaymentStateUninitialized,
	PaymentStateIntentRequested,
	PaymentStateIntentReady,
	PaymentStateConfirming,
	PaymentStateSucceeded,
	PaymentStateFailed,
}

// String implements fmt.Stringer.
func (p PaymentState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentState.
func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentState converts raw input into a PaymentState.
func ParsePaymentState(value string) (PaymentState, error) {
	for _, candidate := range validPaymentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment state %q", value)
}
