package checkout

import (
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

// Event is something the shopper asks the checkout flow to do.
type Event string

const (
	EventSelectAddress    Event = "select_address"
	EventCreateAddress    Event = "create_address"
	EventSetPaymentMethod Event = "set_payment_method"
	EventGoBack           Event = "go_back"
	EventAdvance          Event = "advance"
	EventConfirmCard      Event = "confirm_card_payment"
	EventPlaceCashOrder   Event = "place_cash_order"
)

type transitionKey struct {
	from  enums.CheckoutStep
	event Event
}

// transitions lists every legal move. Anything missing is a state conflict.
// Address changes from review imply going back to the address step, and
// advancing again from payment only retries the payment intent.
var transitions = map[transitionKey]enums.CheckoutStep{
	{enums.CheckoutStepAddressSelection, EventSelectAddress}: enums.CheckoutStepAddressSelection,
	{enums.CheckoutStepAddressSelection, EventCreateAddress}: enums.CheckoutStepAddressSelection,
	{enums.CheckoutStepAddressSelection, EventAdvance}:       enums.CheckoutStepReview,

	{enums.CheckoutStepReview, EventSelectAddress}:    enums.CheckoutStepAddressSelection,
	{enums.CheckoutStepReview, EventCreateAddress}:    enums.CheckoutStepAddressSelection,
	{enums.CheckoutStepReview, EventSetPaymentMethod}: enums.CheckoutStepReview,
	{enums.CheckoutStepReview, EventGoBack}:           enums.CheckoutStepAddressSelection,
	{enums.CheckoutStepReview, EventAdvance}:          enums.CheckoutStepPayment,

	{enums.CheckoutStepPayment, EventGoBack}:         enums.CheckoutStepReview,
	{enums.CheckoutStepPayment, EventAdvance}:        enums.CheckoutStepPayment,
	{enums.CheckoutStepPayment, EventConfirmCard}:    enums.CheckoutStepComplete,
	{enums.CheckoutStepPayment, EventPlaceCashOrder}: enums.CheckoutStepComplete,
}

// NextStep returns the step reached by applying event in step from.
func NextStep(from enums.CheckoutStep, event Event) (enums.CheckoutStep, error) {
	next, ok := transitions[transitionKey{from: from, event: event}]
	if !ok {
		return from, pkgerrors.New(pkgerrors.CodeStateConflict, "action not allowed at this checkout step").
			WithDetails(map[string]any{"step": from.String(), "action": string(event)})
	}
	return next, nil
}
