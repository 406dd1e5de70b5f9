package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/types"
)

type cartProductWire struct {
	ID   types.FlexibleID `json:"id"`
	Name string           `json:"name"`
}

type cartItemWire struct {
	ID                  types.FlexibleID    `json:"id"`
	Product             cartProductWire     `json:"product"`
	Variant             *types.FlexibleID   `json:"variant"`
	ColorVariant        *types.FlexibleID   `json:"color_variant"`
	ColorVariantDetails *struct {
		ColorName string `json:"color_name"`
	} `json:"color_variant_details"`
	Size       string              `json:"size"`
	Quantity   int                 `json:"quantity"`
	UnitPrice  decimal.NullDecimal `json:"unit_price"`
	TotalPrice decimal.NullDecimal `json:"total_price"`
}

type cartWire struct {
	ID    types.FlexibleID `json:"id"`
	Items []cartItemWire   `json:"items"`
}

// cartResponse accepts both a bare cart and the {"message", "cart"} envelope
// returned by mutations.
type cartResponse struct {
	cartWire
	Cart *cartWire `json:"cart"`
}

func (r cartResponse) snapshot() cart.Snapshot {
	wire := r.cartWire
	if r.Cart != nil {
		wire = *r.Cart
	}
	items := make([]cart.Item, 0, len(wire.Items))
	for _, item := range wire.Items {
		items = append(items, item.toItem())
	}
	return cart.Snapshot{Items: items}
}

func (w cartItemWire) toItem() cart.Item {
	item := cart.Item{
		ID:        w.ID.String(),
		ProductID: w.Product.ID.String(),
		Name:      w.Product.Name,
		Size:      w.Size,
		Quantity:  w.Quantity,
		UnitPrice: unitPrice(w),
	}
	switch {
	case w.Variant != nil && !w.Variant.IsZero():
		id := w.Variant.String()
		item.VariantID = &id
	case w.ColorVariant != nil && !w.ColorVariant.IsZero():
		id := w.ColorVariant.String()
		item.VariantID = &id
	}
	if w.ColorVariantDetails != nil {
		item.Color = w.ColorVariantDetails.ColorName
	}
	return item
}

// unitPrice prefers an explicit unit price and otherwise derives it from the
// line total, which is what the store reports.
func unitPrice(w cartItemWire) decimal.Decimal {
	if w.UnitPrice.Valid {
		return w.UnitPrice.Decimal
	}
	if !w.TotalPrice.Valid || w.Quantity <= 0 {
		return decimal.Zero
	}
	return w.TotalPrice.Decimal.Div(decimal.NewFromInt(int64(w.Quantity))).Round(2)
}

type addItemWire struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id,omitempty"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (cart.Snapshot, error) {
	var resp cartResponse
	if err := c.do(ctx, "cart.get", http.MethodGet, "cart/", nil, &resp); err != nil {
		return cart.Snapshot{}, err
	}
	return resp.snapshot(), nil
}

func (c *Client) AddItem(ctx context.Context, input cart.AddItemInput) (cart.Snapshot, error) {
	var resp cartResponse
	body := addItemWire{
		ProductID: input.ProductID,
		VariantID: input.VariantID,
		Size:      input.Size,
		Quantity:  input.Quantity,
	}
	if err := c.do(ctx, "cart.add", http.MethodPost, "cart/add/", body, &resp); err != nil {
		return cart.Snapshot{}, err
	}
	return resp.snapshot(), nil
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) (cart.Snapshot, error) {
	var resp cartResponse
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, "cart.update", http.MethodPut, "cart/update/"+url.PathEscape(itemID)+"/", body, &resp); err != nil {
		return cart.Snapshot{}, err
	}
	return resp.snapshot(), nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (cart.Snapshot, error) {
	var resp cartResponse
	if err := c.do(ctx, "cart.remove", http.MethodDelete, "cart/remove/"+url.PathEscape(itemID)+"/", nil, &resp); err != nil {
		return cart.Snapshot{}, err
	}
	return resp.snapshot(), nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "cart.clear", http.MethodPost, "cart/clear/", nil, nil)
}
