package controllers

import (
	"net/http"

	"github.com/Anshid-ck/cloth-shop-sub001/api/responses"
	"github.com/Anshid-ck/cloth-shop-sub001/api/validators"
	cartsvc "github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

const cartItemIDParam = "itemID"

type cartResponse struct {
	Items          []cartsvc.Item    `json:"items"`
	ItemCount      int               `json:"item_count"`
	Pricing        pricing.Breakdown `json:"pricing"`
	DisplayPricing pricing.Breakdown `json:"display_pricing"`
}

func newCartResponse(snap cartsvc.Snapshot, calc *pricing.Calculator) cartResponse {
	items := snap.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	resp := cartResponse{Items: items, ItemCount: snap.Quantity()}
	if calc != nil {
		resp.Pricing = calc.Compute(snap)
		resp.DisplayPricing = resp.Pricing.Display()
	}
	return resp
}

// CartFetch returns the shopper's cart priced with the checkout calculator.
func CartFetch(svc cartsvc.Service, calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		snap, err := svc.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, calc))
	}
}

func CartAddItem(svc cartsvc.Service, calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartsvc.AddItemInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Add(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(snap, calc))
	}
}

func CartUpdateItem(svc cartsvc.Service, calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		itemID, err := validators.PathString(r, cartItemIDParam, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartsvc.UpdateItemInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Update(r.Context(), itemID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, calc))
	}
}

func CartRemoveItem(svc cartsvc.Service, calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		itemID, err := validators.PathString(r, cartItemIDParam, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Remove(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, calc))
	}
}

// CartClear empties the cart. The checkout clears it itself on completion.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartsvc.Snapshot{}, nil))
	}
}
