package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

// Backend is the store API surface that owns the cart.
type Backend interface {
	GetCart(ctx context.Context) (Snapshot, error)
	AddItem(ctx context.Context, input AddItemInput) (Snapshot, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (Snapshot, error)
	RemoveItem(ctx context.Context, itemID string) (Snapshot, error)
	ClearCart(ctx context.Context) error
}

// Service is the only path through which the cart is read or mutated.
type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Add(ctx context.Context, input AddItemInput) (Snapshot, error)
	Update(ctx context.Context, itemID string, input UpdateItemInput) (Snapshot, error)
	Remove(ctx context.Context, itemID string) (Snapshot, error)
	Clear(ctx context.Context) error
}

type service struct {
	backend  Backend
	validate *validator.Validate
}

// NewService builds a cart service backed by the store API.
func NewService(backend Backend) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("cart backend required")
	}
	return &service{backend: backend, validate: validator.New()}, nil
}

func (s *service) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.backend.GetCart(ctx)
}

func (s *service) Add(ctx context.Context, input AddItemInput) (Snapshot, error) {
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.Size = strings.TrimSpace(input.Size)
	if err := s.validate.Struct(input); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item")
	}
	return s.backend.AddItem(ctx, input)
}

func (s *service) Update(ctx context.Context, itemID string, input UpdateItemInput) (Snapshot, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}
	if err := s.validate.Struct(input); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity")
	}
	return s.backend.UpdateItem(ctx, itemID, input.Quantity)
}

func (s *service) Remove(ctx context.Context, itemID string) (Snapshot, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}
	return s.backend.RemoveItem(ctx, itemID)
}

func (s *service) Clear(ctx context.Context) error {
	return s.backend.ClearCart(ctx)
}
