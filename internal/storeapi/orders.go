package storeapi

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/orders"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/types"
)

type orderWire struct {
	ID          types.FlexibleID    `json:"id"`
	OrderNumber string              `json:"order_number"`
	Total       decimal.NullDecimal `json:"total"`
	TotalAmount decimal.NullDecimal `json:"total_amount"`
	Status      string              `json:"status"`
}

type createOrderResponse struct {
	Message string    `json:"message"`
	Order   orderWire `json:"order"`
}

func (c *Client) CreateOrder(ctx context.Context, req orders.BackendRequest) (orders.BackendOrder, error) {
	var resp createOrderResponse
	if err := c.do(ctx, "orders.create", http.MethodPost, "orders/create/", req, &resp); err != nil {
		return orders.BackendOrder{}, err
	}

	out := orders.BackendOrder{
		ID:     resp.Order.ID.String(),
		Number: resp.Order.OrderNumber,
		Status: resp.Order.Status,
	}
	switch {
	case resp.Order.Total.Valid:
		total := resp.Order.Total.Decimal
		out.Total = &total
	case resp.Order.TotalAmount.Valid:
		total := resp.Order.TotalAmount.Decimal
		out.Total = &total
	}
	return out, nil
}
