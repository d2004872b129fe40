package provider

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// FlexInt decodes an integer sent either as a JSON number or a quoted string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = FlexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("%w: not an integer: %s", ErrDecode, b)
	}
	*n = FlexInt(f)
	return nil
}

// FlexFloat decodes a float sent either as a JSON number or a quoted string.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: not a number: %s", ErrDecode, b)
	}
	*f = FlexFloat(v)
	return nil
}

// isEmptyContainer reports whether raw is null, [], {} or blank.
func isEmptyContainer(raw []byte) bool {
	switch string(bytes.Join(bytes.Fields(raw), nil)) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}
