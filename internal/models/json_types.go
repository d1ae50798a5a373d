package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// FlexFloat accepts a JSON number or a numeric string. Anything else (objects,
// booleans, garbage strings, NaN/Inf) leaves Valid false instead of failing
// the whole request body, so callers decide whether the field is required.
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Value, f.Valid = 0, false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		v = parsed
	default:
		return nil
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	f.Value, f.Valid = v, true
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return jsonNull, nil
	}
	return json.Marshal(f.Value)
}

// OptionalInt64 distinguishes an absent key (Set=false) from an explicit null
// (Set=true, Valid=false). Numeric strings are accepted because HTML selects
// post their values as strings.
type OptionalInt64 struct {
	Set   bool
	Valid bool
	Value int64
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Valid = false
	o.Value = 0

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case float64:
		if t != math.Trunc(t) {
			return fmt.Errorf("expected integer, got %v", t)
		}
		o.Value = int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("expected integer, got %q", t)
		}
		o.Value = parsed
	default:
		return fmt.Errorf("expected integer or null")
	}

	o.Valid = true
	return nil
}

// Ptr returns the value as a pointer, nil when null or absent
func (o OptionalInt64) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// OptionalFloat is the float counterpart of OptionalInt64
type OptionalFloat struct {
	Set   bool
	Valid bool
	Value float64
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	o.Set = true
	var flex FlexFloat
	_ = flex.UnmarshalJSON(data)
	if !flex.Valid && !bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return fmt.Errorf("expected number or null")
	}
	o.Valid, o.Value = flex.Valid, flex.Value
	return nil
}

// Ptr returns the value as a pointer, nil when null or absent
func (o OptionalFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// JSONMap is stored in JSONB columns
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}

	return json.Unmarshal(data, m)
}
