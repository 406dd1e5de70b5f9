package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleID is an identifier the store backend may send as a JSON number or string.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id must be an integer: %s", n)
	}
	*f = FlexibleID(n.String())
	return nil
}

// String implements fmt.Stringer.
func (f FlexibleID) String() string {
	return string(f)
}

// IsZero reports whether no id was provided.
func (f FlexibleID) IsZero() bool {
	return f == ""
}
