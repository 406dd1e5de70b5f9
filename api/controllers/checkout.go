package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Anshid-ck/cloth-shop-sub001/api/middleware"
	"github.com/Anshid-ck/cloth-shop-sub001/api/responses"
	"github.com/Anshid-ck/cloth-shop-sub001/api/validators"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	checkoutsvc "github.com/Anshid-ck/cloth-shop-sub001/internal/checkout"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

const checkoutIDParam = "checkoutID"

type selectAddressRequest struct {
	AddressID string `json:"address_id" validate:"required,max=64"`
}

type paymentMethodRequest struct {
	Method string `json:"method" validate:"required,max=32"`
}

type confirmPaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,max=255"`
}

// CheckoutBegin starts a checkout for the signed-in shopper or resumes the open one.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		view, err := svc.Begin(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func CheckoutView(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		return svc.View(ctx, userID, id)
	})
}

// CheckoutCreateAddress saves a new address with the store and selects it.
func CheckoutCreateAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		var draft address.Draft
		if err := validators.DecodeJSONBody(w, r, &draft); err != nil {
			return nil, err
		}
		return svc.CreateAddress(ctx, userID, id, draft)
	})
}

func CheckoutSelectAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		var payload selectAddressRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return nil, err
		}
		return svc.SelectAddress(ctx, userID, id, validators.SanitizeString(payload.AddressID, 64))
	})
}

// CheckoutSetPaymentMethod accepts card, cod or cash_on_delivery.
func CheckoutSetPaymentMethod(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return nil, err
		}
		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method").WithDetail("method", payload.Method)
		}
		return svc.SetPaymentMethod(ctx, userID, id, method)
	})
}

func CheckoutGoBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		return svc.GoBack(ctx, userID, id)
	})
}

// CheckoutAdvance moves the attempt forward one step, creating the order and
// the card payment intent on the way into payment.
func CheckoutAdvance(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		return svc.Advance(ctx, userID, id)
	})
}

func CheckoutConfirmPayment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			return nil, err
		}
		return svc.ConfirmCardPayment(ctx, userID, id, validators.SanitizeString(payload.PaymentMethodID, 255))
	})
}

func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		return svc.PlaceCashOrder(ctx, userID, id)
	})
}

// CheckoutConfirmation returns the order reference of a completed attempt.
func CheckoutConfirmation(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return withAttempt(svc, logg, func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error) {
		return svc.Confirmation(ctx, userID, id)
	})
}

type attemptHandler func(ctx context.Context, userID string, id uuid.UUID, w http.ResponseWriter, r *http.Request) (any, error)

func withAttempt(svc checkoutsvc.Service, logg *logger.Logger, fn attemptHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, checkoutIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithField(ctx, "attempt_id", id.String())
		}

		result, err := fn(ctx, middleware.UserIDFromContext(ctx), id, w, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
