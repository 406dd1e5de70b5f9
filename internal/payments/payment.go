package payments

import (
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

// Intent is a processor payment intent scoped to one order.
type Intent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
}

// CardPayment is the persisted card payment progress of one checkout attempt.
// Authorized records that the processor accepted the card, so a retry only
// needs settlement verification.
type CardPayment struct {
	State        enums.PaymentState `json:"state"`
	IntentID     *string            `json:"intent_id,omitempty"`
	ClientSecret *string            `json:"client_secret,omitempty"`
	LastError    *string            `json:"last_error,omitempty"`
	Attempts     int                `json:"attempts"`
	Authorized   bool               `json:"authorized"`
}

// NewCardPayment returns a payment that has not requested an intent yet.
func NewCardPayment() CardPayment {
	return CardPayment{State: enums.PaymentStateUninitialized}
}

var cardTransitions = map[enums.PaymentState][]enums.PaymentState{
	enums.PaymentStateUninitialized:   {enums.PaymentStateIntentRequested},
	enums.PaymentStateIntentRequested: {enums.PaymentStateIntentReady, enums.PaymentStateFailed},
	enums.PaymentStateIntentReady:     {enums.PaymentStateConfirming},
	enums.PaymentStateConfirming:      {enums.PaymentStateSucceeded, enums.PaymentStateFailed},
	enums.PaymentStateFailed:          {enums.PaymentStateIntentReady, enums.PaymentStateUninitialized},
}

// CanTransition reports whether the card state machine allows from -> to.
func CanTransition(from, to enums.PaymentState) bool {
	for _, next := range cardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (p *CardPayment) transition(to enums.PaymentState) error {
	from := p.State
	if from == "" {
		from = enums.PaymentStateUninitialized
	}
	if !CanTransition(from, to) {
		return errors.New(errors.CodeStateConflict, "payment cannot move from "+from.String()+" to "+to.String()).
			WithDetails(map[string]any{"payment_state": from.String()})
	}
	p.State = to
	return nil
}

// fail records err and moves through failed to the state a retry starts from.
func (p *CardPayment) fail(err error, resume enums.PaymentState) {
	_ = p.transition(enums.PaymentStateFailed)
	msg := err.Error()
	if typed := errors.As(err); typed != nil {
		msg = typed.Message()
	}
	p.LastError = &msg
	_ = p.transition(resume)
}

// Ready reports whether the payment holds an intent that can be confirmed.
func (p CardPayment) Ready() bool {
	return p.State == enums.PaymentStateIntentReady && p.IntentID != nil && *p.IntentID != ""
}
