package storeapi

import (
	"context"
	"net/http"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/payments"
)

type createIntentRequest struct {
	OrderID string `json:"order_id"`
}

type createIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type verifyRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type verifyResponse struct {
	Status string `json:"status"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string) (payments.Intent, error) {
	var resp createIntentResponse
	if err := c.do(ctx, "payments.create", http.MethodPost, "payments/create/", createIntentRequest{OrderID: orderID}, &resp); err != nil {
		return payments.Intent{}, err
	}
	return payments.Intent{ID: resp.PaymentIntentID, ClientSecret: resp.ClientSecret}, nil
}

// VerifyPayment asks the store to settle the intent with the processor and
// reports the resulting status.
func (c *Client) VerifyPayment(ctx context.Context, intentID string) (string, error) {
	var resp verifyResponse
	if err := c.do(ctx, "payments.confirm", http.MethodPost, "payments/confirm/", verifyRequest{PaymentIntentID: intentID}, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}
