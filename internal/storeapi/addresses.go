package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/types"
)

const addressesPath = "auth/addresses/"

type addressWire struct {
	ID           types.FlexibleID `json:"id,omitempty"`
	Name         string           `json:"name"`
	Phone        string           `json:"phone"`
	AddressLine1 string           `json:"address_line1"`
	AddressLine2 string           `json:"address_line2"`
	City         string           `json:"city"`
	State        string           `json:"state"`
	Pincode      string           `json:"pincode"`
	Landmark     string           `json:"landmark"`
	AddressType  string           `json:"address_type"`
	IsDefault    bool             `json:"is_default"`
}

func (w addressWire) toAddress() address.Address {
	kind, err := enums.ParseAddressType(w.AddressType)
	if err != nil {
		kind = enums.AddressTypeOther
	}
	return address.Address{
		ID:         w.ID.String(),
		Name:       w.Name,
		Phone:      w.Phone,
		Line1:      w.AddressLine1,
		Line2:      w.AddressLine2,
		Landmark:   w.Landmark,
		City:       w.City,
		State:      w.State,
		PostalCode: w.Pincode,
		Type:       kind,
		IsDefault:  w.IsDefault,
	}
}

func draftToWire(d address.Draft) addressWire {
	return addressWire{
		Name:         d.Name,
		Phone:        d.Phone,
		AddressLine1: d.Line1,
		AddressLine2: d.Line2,
		City:         d.City,
		State:        d.State,
		Pincode:      d.PostalCode,
		Landmark:     d.Landmark,
		AddressType:  d.Type.String(),
		IsDefault:    d.IsDefault,
	}
}

// ListAddresses accepts either a bare array or a paginated {"results": [...]} body.
func (c *Client) ListAddresses(ctx context.Context) ([]address.Address, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "addresses.list", http.MethodGet, addressesPath, nil, &raw); err != nil {
		return nil, err
	}

	wires, err := decodeAddressList(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode addresses.list response")
	}
	out := make([]address.Address, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toAddress())
	}
	return out, nil
}

func decodeAddressList(raw json.RawMessage) ([]addressWire, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []addressWire
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}
	var page struct {
		Results []addressWire `json:"results"`
	}
	err := json.Unmarshal(trimmed, &page)
	return page.Results, err
}

func (c *Client) CreateAddress(ctx context.Context, draft address.Draft) (address.Address, error) {
	var created addressWire
	if err := c.do(ctx, "addresses.create", http.MethodPost, addressesPath, draftToWire(draft), &created); err != nil {
		return address.Address{}, err
	}
	if created.ID.IsZero() {
		return address.Address{}, pkgerrors.New(pkgerrors.CodeDependency, "store service returned an address without an id")
	}
	return created.toAddress(), nil
}
