package address

import (
	"context"
	"errors"
	"testing"

	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
)

func TestListPreselectsSingleDefault(t *testing.T) {
	cases := []struct {
		name      string
		addresses []Address
		want      *string
	}{
		{name: "none", addresses: nil},
		{name: "single default", addresses: []Address{{ID: "1"}, {ID: "2", IsDefault: true}}, want: strPtr("2")},
		{name: "two defaults", addresses: []Address{{ID: "1", IsDefault: true}, {ID: "2", IsDefault: true}}},
		{name: "no default", addresses: []Address{{ID: "1"}, {ID: "2"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := NewStore(&stubBackend{addresses: tc.addresses})
			if err != nil {
				t.Fatalf("new store: %v", err)
			}
			sel, err := st.List(context.Background())
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if sel.Addresses == nil {
				t.Fatal("addresses should never be nil")
			}
			switch {
			case tc.want == nil && sel.SelectedID != nil:
				t.Fatalf("expected no selection, got %s", *sel.SelectedID)
			case tc.want != nil && (sel.SelectedID == nil || *sel.SelectedID != *tc.want):
				t.Fatalf("expected selection %s, got %v", *tc.want, sel.SelectedID)
			}
		})
	}
}

func TestListSurfacesBackendFailure(t *testing.T) {
	backendErr := pkgerrors.New(pkgerrors.CodeDependency, "store unavailable")
	st, _ := NewStore(&stubBackend{listErr: backendErr})
	if _, err := st.List(context.Background()); !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	backend := &stubBackend{}
	st, _ := NewStore(backend)

	_, err := st.Create(context.Background(), Draft{Name: "A", Phone: "123"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := typed.Details()["line1"]; !ok {
		t.Fatalf("expected line1 in details, got %+v", typed.Details())
	}
	if backend.createCalls != 0 {
		t.Fatal("backend must not be called for invalid drafts")
	}

	_, err = st.Create(context.Background(), validDraft(enums.AddressType("castle")))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid type to fail validation, got %v", err)
	}
}

func TestCreateNormalizesAndForwards(t *testing.T) {
	backend := &stubBackend{}
	st, _ := NewStore(backend)

	draft := validDraft("")
	draft.Name = "  Asha  "
	if _, err := st.Create(context.Background(), draft); err != nil {
		t.Fatalf("create: %v", err)
	}
	if backend.createCalls != 1 {
		t.Fatalf("expected one backend call, got %d", backend.createCalls)
	}
	if backend.lastDraft.Name != "Asha" || backend.lastDraft.Type != enums.AddressTypeHome {
		t.Fatalf("draft not normalized: %+v", backend.lastDraft)
	}

	draft.Type = "Office"
	if _, err := st.Create(context.Background(), draft); err != nil {
		t.Fatalf("create office: %v", err)
	}
	if backend.lastDraft.Type != enums.AddressTypeOffice {
		t.Fatalf("expected office type, got %s", backend.lastDraft.Type)
	}
}

func validDraft(kind enums.AddressType) Draft {
	return Draft{
		Name:       "Asha",
		Phone:      "9876543210",
		Line1:      "12 MG Road",
		City:       "Kochi",
		State:      "Kerala",
		PostalCode: "682001",
		Type:       kind,
	}
}

func strPtr(v string) *string { return &v }

type stubBackend struct {
	addresses   []Address
	listErr     error
	createCalls int
	lastDraft   Draft
}

func (s *stubBackend) ListAddresses(context.Context) ([]Address, error) {
	return s.addresses, s.listErr
}

func (s *stubBackend) CreateAddress(_ context.Context, draft Draft) (Address, error) {
	s.createCalls++
	s.lastDraft = draft
	return Address{ID: "new", Name: draft.Name, Type: draft.Type}, nil
}
