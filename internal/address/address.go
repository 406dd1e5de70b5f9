package address

import (
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
)

// Address is a saved delivery address owned by the shopper's account.
type Address struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Line1      string            `json:"line1"`
	Line2      string            `json:"line2,omitempty"`
	Landmark   string            `json:"landmark,omitempty"`
	City       string            `json:"city"`
	State      string            `json:"state"`
	PostalCode string            `json:"postal_code"`
	Type       enums.AddressType `json:"type"`
	IsDefault  bool              `json:"is_default"`
}

// Draft is the input for creating an address.
type Draft struct {
	Name       string            `json:"name" validate:"required,max=255"`
	Phone      string            `json:"phone" validate:"required,min=7,max=15"`
	Line1      string            `json:"line1" validate:"required,max=255"`
	Line2      string            `json:"line2,omitempty" validate:"omitempty,max=255"`
	Landmark   string            `json:"landmark,omitempty" validate:"omitempty,max=255"`
	City       string            `json:"city" validate:"required,max=100"`
	State      string            `json:"state" validate:"required,max=100"`
	PostalCode string            `json:"postal_code" validate:"required,max=10"`
	Type       enums.AddressType `json:"type" validate:"required,oneof=home office work other"`
	IsDefault  bool              `json:"is_default"`
}

// Selection is the address list plus the address chosen up front, if any.
type Selection struct {
	Addresses  []Address `json:"addresses"`
	SelectedID *string   `json:"selected_id,omitempty"`
}

// Find returns the address with the given id.
func (s Selection) Find(id string) (Address, bool) {
	for _, addr := range s.Addresses {
		if addr.ID == id {
			return addr, true
		}
	}
	return Address{}, false
}

// DefaultSelection returns the id of the only default address. With zero or
// several defaults nothing is pre-selected.
func DefaultSelection(addresses []Address) *string {
	var selected *string
	for i := range addresses {
		if !addresses[i].IsDefault {
			continue
		}
		if selected != nil {
			return nil
		}
		id := addresses[i].ID
		selected = &id
	}
	return selected
}
