package payments

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	stripeclient "github.com/Anshid-ck/cloth-shop-sub001/pkg/stripe"
)

type stripeProcessor struct {
	intents stripeclient.PaymentIntentAPI
}

// NewStripeProcessor confirms card payments through Stripe payment intents.
func NewStripeProcessor(intents stripeclient.PaymentIntentAPI) (Processor, error) {
	if intents == nil {
		return nil, fmt.Errorf("stripe payment intent api required")
	}
	return &stripeProcessor{intents: intents}, nil
}

func (p *stripeProcessor) ConfirmCard(ctx context.Context, req ConfirmRequest) (ProcessorResult, error) {
	if strings.TrimSpace(req.IntentID) == "" {
		return ProcessorResult{}, errors.New(errors.CodeValidation, "payment intent id is required")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(req.PaymentMethodID),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	intent, err := p.intents.Confirm(req.IntentID, params)
	if err != nil {
		return ProcessorResult{}, mapStripeError(err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return ProcessorResult{IntentID: intent.ID, Status: string(intent.Status)}, nil
	case stripe.PaymentIntentStatusRequiresAction:
		return ProcessorResult{}, errors.New(errors.CodePaymentDeclined, "card requires additional authentication").
			WithDetail("processor_status", string(intent.Status))
	default:
		msg := "payment was not completed"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			msg = intent.LastPaymentError.Msg
		}
		return ProcessorResult{}, errors.New(errors.CodePaymentDeclined, msg).
			WithDetail("processor_status", string(intent.Status))
	}
}

// IntentStatus reads the intent back from Stripe so a confirmation whose
// response never arrived can be told apart from one that never happened.
func (p *stripeProcessor) IntentStatus(ctx context.Context, intentID string) (string, error) {
	if strings.TrimSpace(intentID) == "" {
		return "", errors.New(errors.CodeValidation, "payment intent id is required")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.intents.Get(intentID, params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return string(intent.Status), nil
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !stderrors.As(err, &stripeErr) {
		return errors.Wrap(errors.CodeDependency, err, "card processor unavailable")
	}
	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		msg := stripeErr.Msg
		if msg == "" {
			msg = "card was declined"
		}
		return errors.Wrap(errors.CodePaymentDeclined, err, msg).
			WithDetail("decline_code", string(stripeErr.DeclineCode))
	case stripe.ErrorTypeInvalidRequest:
		// An intent that already left requires_payment_method was confirmed by
		// an earlier request; its outcome is read back, not declined.
		if stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
			return errors.Wrap(errors.CodeDependency, err, "payment is already being processed; try again shortly").
				WithDetail("processor_code", string(stripeErr.Code))
		}
		return errors.Wrap(errors.CodePaymentDeclined, err, "card details could not be used").
			WithDetail("processor_code", string(stripeErr.Code))
	default:
		return errors.Wrap(errors.CodeDependency, err, "card processor unavailable")
	}
}
