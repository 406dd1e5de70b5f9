package enums

import "fmt"

// CheckoutStep is the position of a checkout attempt in the flow.
type CheckoutStep string

const (
	CheckoutStepAddressSelection CheckoutStep = "address_selection"
	CheckoutStepReview           CheckoutStep = "review_and_payment_method"
	CheckoutStepPayment          CheckoutStep = "payment"
	CheckoutStepComplete         CheckoutStep = "complete"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepAddressSelection,
	CheckoutStepReview,
	CheckoutStepPayment,
	CheckoutStepComplete,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// Index returns the zero-based position of the step, or -1.
func (c CheckoutStep) Index() int {
	for i, candidate := range validCheckoutSteps {
		if candidate == c {
			return i
		}
	}
	return -1
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range validCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
