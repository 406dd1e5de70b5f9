package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

// Backend is the store API surface for the shopper's saved addresses.
type Backend interface {
	ListAddresses(ctx context.Context) ([]Address, error)
	CreateAddress(ctx context.Context, draft Draft) (Address, error)
}

type Store interface {
	List(ctx context.Context) (Selection, error)
	Create(ctx context.Context, draft Draft) (Address, error)
}

type store struct {
	backend  Backend
	validate *validator.Validate
}

func NewStore(backend Backend) (Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("address backend required")
	}
	return &store{backend: backend, validate: validator.New()}, nil
}

func (s *store) List(ctx context.Context) (Selection, error) {
	addresses, err := s.backend.ListAddresses(ctx)
	if err != nil {
		return Selection{}, err
	}
	if addresses == nil {
		addresses = []Address{}
	}
	return Selection{
		Addresses:  addresses,
		SelectedID: DefaultSelection(addresses),
	}, nil
}

func (s *store) Create(ctx context.Context, draft Draft) (Address, error) {
	draft = normalizeDraft(draft)
	if err := s.validate.Struct(draft); err != nil {
		return Address{}, errors.Wrap(errors.CodeValidation, err, "invalid address").
			WithDetails(fieldErrors(err))
	}
	return s.backend.CreateAddress(ctx, draft)
}

func normalizeDraft(d Draft) Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Line1 = strings.TrimSpace(d.Line1)
	d.Line2 = strings.TrimSpace(d.Line2)
	d.Landmark = strings.TrimSpace(d.Landmark)
	d.City = strings.TrimSpace(d.City)
	d.State = strings.TrimSpace(d.State)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	if d.Type == "" {
		d.Type = enums.AddressTypeHome
	} else if parsed, err := enums.ParseAddressType(string(d.Type)); err == nil {
		d.Type = parsed
	}
	return d
}

func fieldErrors(err error) map[string]any {
	details := map[string]any{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return details
	}
	for _, fe := range verrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return details
}
