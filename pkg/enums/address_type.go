package enums

import (
	"fmt"
	"strings"
)

// AddressType labels a saved shipping address.
type AddressType string

const (
	AddressTypeHome   AddressType = "home"
	AddressTypeOffice AddressType = "office"
	AddressTypeWork   AddressType = "work"
	AddressTypeOther  AddressType = "other"
)

var validAddressTypes = []AddressType{
	AddressTypeHome,
	AddressTypeOffice,
	AddressTypeWork,
	AddressTypeOther,
}

// String implements fmt.Stringer.
func (a AddressType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AddressType.
func (a AddressType) IsValid() bool {
	for _, candidate := range validAddressTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAddressType converts raw input into an AddressType. Matching ignores case.
func ParseAddressType(value string) (AddressType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAddressTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid address type %q", value)
}
