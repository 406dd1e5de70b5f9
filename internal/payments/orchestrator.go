package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/orders"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

// Backend is the store API surface for payment intents and settlement.
type Backend interface {
	CreatePaymentIntent(ctx context.Context, orderID string) (Intent, error)
	VerifyPayment(ctx context.Context, intentID string) (string, error)
}

// ConfirmRequest asks the processor to charge a card against an intent.
type ConfirmRequest struct {
	IntentID        string
	PaymentMethodID string
	IdempotencyKey  string
}

// ProcessorResult is the processor's view of the intent after confirmation.
type ProcessorResult struct {
	IntentID string
	Status   string
}

// Processor confirms card payments with the external card processor and
// reads back where an intent stands.
type Processor interface {
	ConfirmCard(ctx context.Context, req ConfirmRequest) (ProcessorResult, error)
	IntentStatus(ctx context.Context, intentID string) (string, error)
}

// MetricsRecorder is the slice of checkout metrics used here.
type MetricsRecorder interface {
	IncPayment(method, outcome string)
}

// ConfirmInput is the shopper's card submission.
type ConfirmInput struct {
	PaymentMethodID string
	IdempotencyKey  string
}

// Orchestrator drives card payments through their state machine and
// acknowledges cash on delivery orders. Every method returns the updated
// payment, also on failure, so the caller can persist it. Confirm also
// returns the order carrying the status settlement gave it.
type Orchestrator interface {
	RequestIntent(ctx context.Context, order orders.Order, current CardPayment) (CardPayment, error)
	Confirm(ctx context.Context, order orders.Order, current CardPayment, input ConfirmInput) (CardPayment, orders.Order, error)
	AcknowledgeCash(ctx context.Context, order orders.Order) error
}

// chargeUnknown is the charged detail when the processor's answer was lost.
const chargeUnknown = "unknown"

var (
	processorAccepted = map[string]bool{"succeeded": true, "processing": true}
	settledStatuses   = map[string]bool{"succeeded": true, "paid": true, "confirmed": true}
)

type orchestrator struct {
	backend   Backend
	processor Processor
	metrics   MetricsRecorder
	logg      *logger.Logger
}

func NewOrchestrator(backend Backend, processor Processor, metrics MetricsRecorder, logg *logger.Logger) (Orchestrator, error) {
	if backend == nil {
		return nil, fmt.Errorf("payments backend required")
	}
	if processor == nil {
		return nil, fmt.Errorf("card processor required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &orchestrator{backend: backend, processor: processor, metrics: metrics, logg: logg}, nil
}

func (o *orchestrator) RequestIntent(ctx context.Context, order orders.Order, current CardPayment) (CardPayment, error) {
	if strings.TrimSpace(order.ID) == "" {
		return current, errors.New(errors.CodeStateConflict, "an order is required before payment")
	}
	if order.PaymentMethod != enums.PaymentMethodCard {
		return current, errors.New(errors.CodeStateConflict, "payment intents are only used for card payments")
	}
	if current.Ready() {
		return current, nil
	}

	next := current
	if err := next.transition(enums.PaymentStateIntentRequested); err != nil {
		return current, err
	}

	intent, err := o.backend.CreatePaymentIntent(ctx, order.ID)
	if err == nil && (intent.ID == "" || intent.ClientSecret == "") {
		err = errors.New(errors.CodeDependency, "payment service returned an incomplete intent")
	}
	if err != nil {
		wrapped := intentFailure(err)
		next.fail(wrapped, enums.PaymentStateUninitialized)
		o.logg.Warn(o.logg.WithField(ctx, "order_id", order.ID), "payment intent request failed")
		return next, wrapped
	}

	next.IntentID = &intent.ID
	next.ClientSecret = &intent.ClientSecret
	next.LastError = nil
	if err := next.transition(enums.PaymentStateIntentReady); err != nil {
		return current, err
	}
	return next, nil
}

func (o *orchestrator) Confirm(ctx context.Context, order orders.Order, current CardPayment, input ConfirmInput) (CardPayment, orders.Order, error) {
	if order.PaymentMethod != enums.PaymentMethodCard {
		return current, order, errors.New(errors.CodeStateConflict, "order is not paid by card")
	}
	if !current.Ready() {
		return current, order, errors.New(errors.CodeStateConflict, "payment is not ready for confirmation").
			WithDetail("payment_state", current.State.String())
	}
	intentID := *current.IntentID
	logCtx := o.logg.WithFields(ctx, map[string]any{"payment_intent_id": intentID, "order_id": order.ID})

	next := current
	if err := next.transition(enums.PaymentStateConfirming); err != nil {
		return current, order, err
	}
	next.Attempts++

	// An earlier attempt may have reached the processor without an answer
	// getting back to us.
	if !next.Authorized && current.Attempts > 0 {
		next.Authorized = o.intentAccepted(logCtx, intentID)
	}

	if !next.Authorized {
		pmID := strings.TrimSpace(input.PaymentMethodID)
		if pmID == "" {
			missing := errors.New(errors.CodeValidation, "card details are required").WithDetail("charged", false)
			next.fail(missing, enums.PaymentStateIntentReady)
			return next, order, missing
		}

		result, err := o.processor.ConfirmCard(ctx, ConfirmRequest{
			IntentID:        intentID,
			PaymentMethodID: pmID,
			IdempotencyKey:  input.IdempotencyKey,
		})
		switch {
		case err != nil && !errors.IsCode(err, errors.CodePaymentDeclined) && o.intentAccepted(logCtx, intentID):
			o.logg.Info(logCtx, "processor already accepted the card; verifying")
		case err != nil:
			wrapped := confirmFailure(err)
			next.fail(wrapped, enums.PaymentStateIntentReady)
			o.record(outcomeFor(wrapped))
			o.logg.Warn(logCtx, "card confirmation failed")
			return next, order, wrapped
		case !processorAccepted[result.Status]:
			declined := errors.New(errors.CodePaymentDeclined, "payment was not completed").
				WithDetails(map[string]any{"processor_status": result.Status, "charged": false})
			next.fail(declined, enums.PaymentStateIntentReady)
			o.record("declined")
			return next, order, declined
		}
		next.Authorized = true
	}

	status, err := o.backend.VerifyPayment(ctx, intentID)
	if err != nil {
		wrapped := o.verifyFailure(logCtx, intentID, err)
		if errors.IsCode(wrapped, errors.CodePaymentDeclined) {
			next.Authorized = false
		}
		next.fail(wrapped, enums.PaymentStateIntentReady)
		o.record(outcomeFor(wrapped))
		o.logg.Warn(logCtx, "payment verification failed")
		return next, order, wrapped
	}
	if !settledStatuses[strings.ToLower(status)] {
		pending := errors.New(errors.CodeDependency, "payment is not confirmed yet; try again shortly").
			WithDetails(map[string]any{"backend_status": status, "charged": true})
		next.fail(pending, enums.PaymentStateIntentReady)
		o.record("unverified")
		return next, order, pending
	}

	next.LastError = nil
	if err := next.transition(enums.PaymentStateSucceeded); err != nil {
		return current, order, err
	}
	order.Status = enums.OrderStatusPaid
	o.record("succeeded")
	o.logg.Info(logCtx, "card payment settled")
	return next, order, nil
}

// intentAccepted reports whether the processor already holds the card on the
// intent. Lookup failures count as not accepted.
func (o *orchestrator) intentAccepted(ctx context.Context, intentID string) bool {
	status, err := o.processor.IntentStatus(ctx, intentID)
	if err != nil {
		o.logg.Warn(o.logg.WithField(ctx, "error", err.Error()), "payment intent lookup failed")
		return false
	}
	return processorAccepted[status]
}

// verifyFailure maps settlement errors. The store answers 400 for every intent
// it cannot settle yet, so the processor decides whether the card was refused.
func (o *orchestrator) verifyFailure(ctx context.Context, intentID string, err error) error {
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeValidation {
		return errors.Wrap(errors.CodeDependency, err, "could not confirm payment; try again").WithDetail("charged", true)
	}

	status, lookupErr := o.processor.IntentStatus(ctx, intentID)
	switch {
	case lookupErr != nil:
		o.logg.Warn(o.logg.WithField(ctx, "error", lookupErr.Error()), "payment intent lookup failed")
		return errors.Wrap(errors.CodeDependency, err, "could not confirm payment; try again").WithDetail("charged", true)
	case processorAccepted[status]:
		return errors.Wrap(errors.CodeDependency, err, "payment is not confirmed yet; try again shortly").
			WithDetails(map[string]any{"processor_status": status, "charged": true})
	default:
		return errors.Wrap(errors.CodePaymentDeclined, err, typed.Message()).
			WithDetails(map[string]any{"processor_status": status, "charged": false})
	}
}

func (o *orchestrator) AcknowledgeCash(ctx context.Context, order orders.Order) error {
	if strings.TrimSpace(order.ID) == "" {
		return errors.New(errors.CodeStateConflict, "an order is required before placing it")
	}
	if order.PaymentMethod != enums.PaymentMethodCOD {
		return errors.New(errors.CodeStateConflict, "order is not cash on delivery")
	}
	if o.metrics != nil {
		o.metrics.IncPayment(enums.PaymentMethodCOD.String(), "acknowledged")
	}
	return nil
}

func (o *orchestrator) record(outcome string) {
	if o.metrics != nil {
		o.metrics.IncPayment(enums.PaymentMethodCard.String(), outcome)
	}
}

func intentFailure(err error) error {
	if typed := errors.As(err); typed != nil && typed.Code() != errors.CodeInternal {
		return withCharged(err, false)
	}
	return errors.Wrap(errors.CodeDependency, err, "could not start card payment").WithDetail("charged", false)
}

// verifyFailure maps settlement errors. A 400 from verification means the
// intent still needs a payment method, which is a decline.
func verifyFailure(err error) error {
	typed := errors.As(err)
	if typed != nil && typed.Code() == errors.CodeValidation {
		return errors.Wrap(errors.CodePaymentDeclined, err, typed.Message()).WithDetail("charged", false)
	}
	return errors.Wrap(errors.CodeDependency, err, "could not confirm payment; try again").WithDetail("charged", true)
}

// confirmFailure tags processor errors. Only a refusal proves the card was not
// charged; a lost or failed call leaves it unknown until the intent is read back.
func confirmFailure(err error) error {
	switch typed := errors.As(err); {
	case typed == nil, typed.Code() == errors.CodeDependency, typed.Code() == errors.CodeInternal:
		return withCharged(err, chargeUnknown)
	default:
		return withCharged(err, false)
	}
}

func withCharged(err error, charged any) error {
	typed := errors.As(err)
	if typed == nil {
		return errors.Wrap(errors.CodeDependency, err, "card processor unavailable").WithDetail("charged", charged)
	}
	if _, ok := typed.Details()["charged"]; !ok {
		typed.WithDetail("charged", charged)
	}
	return err
}

func outcomeFor(err error) string {
	if errors.IsCode(err, errors.CodePaymentDeclined) {
		return "declined"
	}
	return "failed"
}
