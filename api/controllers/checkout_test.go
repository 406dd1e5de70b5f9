package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Anshid-ck/cloth-shop-sub001/api/middleware"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	checkoutsvc "github.com/Anshid-ck/cloth-shop-sub001/internal/checkout"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

type stubCheckoutService struct {
	view *checkoutsvc.View
	err  error

	lastUser      string
	lastID        uuid.UUID
	lastAddressID string
	lastMethod    enums.PaymentMethod
	lastPMID      string
	lastDraft     address.Draft
	calls         []string
}

func (s *stubCheckoutService) record(name, userID string, id uuid.UUID) (*checkoutsvc.View, error) {
	s.calls = append(s.calls, name)
	s.lastUser = userID
	s.lastID = id
	return s.view, s.err
}

func (s *stubCheckoutService) Begin(ctx context.Context, userID string) (*checkoutsvc.View, error) {
	return s.record("begin", userID, uuid.Nil)
}

func (s *stubCheckoutService) View(ctx context.Context, userID string, id uuid.UUID) (*checkoutsvc.View, error) {
	return s.record("view", userID, id)
}

func (s *stubCheckoutService) CreateAddress(ctx context.Context, userID string, id uuid.UUID, draft address.Draft) (*checkoutsvc.View, error) {
	s.lastDraft = draft
	return s.record("create_address", userID, id)
}

func (s *stubCheckoutService) SelectAddress(ctx context.Context, userID string, id uuid.UUID, addressID string) (*checkoutsvc.View, error) {
	s.lastAddressID = addressID
	return s.record("select_address", userID, id)
}

func (s *stubCheckoutService) SetPaymentMethod(ctx context.Context, userID string, id uuid.UUID, method enums.PaymentMethod) (*checkoutsvc.View, error) {
	s.lastMethod = method
	return s.record("set_payment_method", userID, id)
}

func (s *stubCheckoutService) GoBack(ctx context.Context, userID string, id uuid.UUID) (*checkoutsvc.View, error) {
	return s.record("go_back", userID, id)
}

func (s *stubCheckoutService) Advance(ctx context.Context, userID string, id uuid.UUID) (*checkoutsvc.View, error) {
	return s.record("advance", userID, id)
}

func (s *stubCheckoutService) ConfirmCardPayment(ctx context.Context, userID string, id uuid.UUID, paymentMethodID string) (*checkoutsvc.View, error) {
	s.lastPMID = paymentMethodID
	return s.record("confirm", userID, id)
}

func (s *stubCheckoutService) PlaceCashOrder(ctx context.Context, userID string, id uuid.UUID) (*checkoutsvc.View, error) {
	return s.record("place_order", userID, id)
}

func (s *stubCheckoutService) Confirmation(ctx context.Context, userID string, id uuid.UUID) (*checkoutsvc.Confirmation, error) {
	s.calls = append(s.calls, "confirmation")
	s.lastUser = userID
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &checkoutsvc.Confirmation{AttemptID: id, OrderID: "o-1", OrderNumber: "ORD-1"}, nil
}

func serveAttempt(t *testing.T, h http.HandlerFunc, method, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rc := chi.NewRouteContext()
	rc.URLParams.Add(checkoutIDParam, id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = middleware.WithUserID(ctx, "42")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req.WithContext(ctx))
	return resp
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Error.Code
}

func TestCheckoutBeginCreated(t *testing.T) {
	id := uuid.New()
	svc := &stubCheckoutService{view: &checkoutsvc.View{ID: id, Step: enums.CheckoutStepAddressSelection}}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "42"))
	resp := httptest.NewRecorder()
	CheckoutBegin(svc, logger.Nop()).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastUser != "42" {
		t.Fatalf("expected user from context, got %q", svc.lastUser)
	}
	var payload struct {
		Data struct {
			ID   string `json:"id"`
			Step string `json:"step"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.ID != id.String() || payload.Data.Step != string(enums.CheckoutStepAddressSelection) {
		t.Fatalf("unexpected payload %+v", payload.Data)
	}
}

func TestCheckoutBeginEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").WithDetail("redirect", "cart")}

	resp := httptest.NewRecorder()
	CheckoutBegin(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Details["redirect"] != "cart" {
		t.Fatalf("expected cart redirect, got %v", payload.Error.Details)
	}
}

func TestCheckoutRejectsMalformedID(t *testing.T) {
	svc := &stubCheckoutService{view: &checkoutsvc.View{}}
	resp := serveAttempt(t, CheckoutView(svc, nil), http.MethodGet, "not-a-uuid", "")

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service should not be called, got %v", svc.calls)
	}
}

func TestCheckoutSelectAddress(t *testing.T) {
	id := uuid.New()
	svc := &stubCheckoutService{view: &checkoutsvc.View{ID: id}}
	resp := serveAttempt(t, CheckoutSelectAddress(svc, nil), http.MethodPut, id.String(), `{"address_id":" 10 "}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastID != id || svc.lastAddressID != "10" {
		t.Fatalf("unexpected call id=%s address=%q", svc.lastID, svc.lastAddressID)
	}
}

func TestCheckoutCreateAddressValidatesDraft(t *testing.T) {
	id := uuid.New()
	svc := &stubCheckoutService{view: &checkoutsvc.View{ID: id}}
	resp := serveAttempt(t, CheckoutCreateAddress(svc, nil), http.MethodPost, id.String(), `{"name":"Asha","type":"garage"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("invalid drafts must not reach the service")
	}

	body := `{"name":"Asha","phone":"9876543210","line1":"12 MG Road","city":"Kochi","state":"Kerala","postal_code":"682001","type":"office"}`
	resp = serveAttempt(t, CheckoutCreateAddress(svc, nil), http.MethodPost, id.String(), body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastDraft.Type != enums.AddressTypeOffice || svc.lastDraft.City != "Kochi" {
		t.Fatalf("unexpected draft %+v", svc.lastDraft)
	}
}

func TestCheckoutSetPaymentMethodAcceptsAlias(t *testing.T) {
	id := uuid.New()
	svc := &stubCheckoutService{view: &checkoutsvc.View{ID: id}}
	resp := serveAttempt(t, CheckoutSetPaymentMethod(svc, nil), http.MethodPut, id.String(), `{"method":"cash_on_delivery"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastMethod != enums.PaymentMethodCOD {
		t.Fatalf("expected cod, got %q", svc.lastMethod)
	}

	resp = serveAttempt(t, CheckoutSetPaymentMethod(svc, nil), http.MethodPut, id.String(), `{"method":"upi"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown method, got %d", resp.Code)
	}
}

func TestCheckoutConfirmPayment(t *testing.T) {
	id := uuid.New()
	svc := &stubCheckoutService{view: &checkoutsvc.View{ID: id, Step: enums.CheckoutStepComplete}}

	resp := serveAttempt(t, CheckoutConfirmPayment(svc, nil), http.MethodPost, id.String(), `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without payment method, got %d", resp.Code)
	}

	resp = serveAttempt(t, CheckoutConfirmPayment(svc, nil), http.MethodPost, id.String(), `{"payment_method_id":"pm_card_visa"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastPMID != "pm_card_visa" {
		t.Fatalf("unexpected payment method %q", svc.lastPMID)
	}
}

func TestCheckoutErrorMapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		err    error
		status int
		code   pkgerrors.Code
	}{
		{"declined", pkgerrors.New(pkgerrors.CodePaymentDeclined, "card declined"), http.StatusPaymentRequired, pkgerrors.CodePaymentDeclined},
		{"inventory", pkgerrors.New(pkgerrors.CodeInventoryConflict, "out of stock"), http.StatusConflict, pkgerrors.CodeInventoryConflict},
		{"illegal transition", pkgerrors.New(pkgerrors.CodeStateConflict, "not allowed"), http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{"store down", pkgerrors.New(pkgerrors.CodeDependency, "store service unavailable"), http.StatusServiceUnavailable, pkgerrors.CodeDependency},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found"), http.StatusNotFound, pkgerrors.CodeNotFound},
	}

	for _, tt := range tests {
		svc := &stubCheckoutService{err: tt.err}
		resp := serveAttempt(t, CheckoutAdvance(svc, nil), http.MethodPost, id.String(), "")
		if resp.Code != tt.status {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.status, resp.Code)
		}
		if got := decodeErrorCode(t, resp); got != string(tt.code) {
			t.Fatalf("%s: expected code %s got %s", tt.name, tt.code, got)
		}
	}
}

func TestCheckoutConfirmation(t *testing.T) {
	id := uuid.New()
	svc := &stubCheckoutService{}
	resp := serveAttempt(t, CheckoutConfirmation(svc, nil), http.MethodGet, id.String(), "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var payload struct {
		Data struct {
			OrderID     string `json:"order_id"`
			OrderNumber string `json:"order_number"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.OrderID != "o-1" || payload.Data.OrderNumber != "ORD-1" {
		t.Fatalf("unexpected confirmation %+v", payload.Data)
	}
}

func TestCheckoutNilService(t *testing.T) {
	resp := serveAttempt(t, CheckoutGoBack(nil, nil), http.MethodPost, uuid.NewString(), "")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
