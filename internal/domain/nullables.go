package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// NullableString represents a string that can be null
type NullableString struct {
	String string
	IsNull bool
}

// Value implements the driver.Valuer interface for database/sql
func (ns NullableString) Value() (driver.Value, error) {
	if ns.IsNull {
		return nil, nil
	}
	return ns.String, nil
}

// Scan implements the sql.Scanner interface for database/sql
func (ns *NullableString) Scan(value interface{}) error {
	if value == nil {
		ns.String = ""
		ns.IsNull = true
		return nil
	}

	switch v := value.(type) {
	case string:
		ns.String = v
		ns.IsNull = false
		return nil
	case []byte:
		ns.String = string(v)
		ns.IsNull = false
		return nil
	default:
		return fmt.Errorf("cannot scan %T into NullableString", value)
	}
}

// MarshalJSON implements json.Marshaler
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if ns.IsNull {
		return []byte("null"), nil
	}
	return json.Marshal(ns.String)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ns.String = ""
		ns.IsNull = true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	ns.String = str
	ns.IsNull = false
	return nil
}

// NullableInt64 represents an int64 that can be null
type NullableInt64 struct {
	Int64  int64
	IsNull bool
}

// Value implements the driver.Valuer interface for database/sql
func (ni NullableInt64) Value() (driver.Value, error) {
	if ni.IsNull {
		return nil, nil
	}
	return ni.Int64, nil
}

// Scan implements the sql.Scanner interface for database/sql
func (ni *NullableInt64) Scan(value interface{}) error {
	if value == nil {
		ni.Int64 = 0
		ni.IsNull = true
		return nil
	}

	switch v := value.(type) {
	case int64:
		ni.Int64 = v
		ni.IsNull = false
		return nil
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot scan %q into NullableInt64: %w", string(v), err)
		}
		ni.Int64 = parsed
		ni.IsNull = false
		return nil
	default:
		return fmt.Errorf("cannot scan %T into NullableInt64", value)
	}
}

// MarshalJSON implements json.Marshaler
func (ni NullableInt64) MarshalJSON() ([]byte, error) {
	if ni.IsNull {
		return []byte("null"), nil
	}
	return json.Marshal(ni.Int64)
}

// UnmarshalJSON implements json.Unmarshaler
func (ni *NullableInt64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ni.Int64 = 0
		ni.IsNull = true
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	ni.Int64 = n
	ni.IsNull = false
	return nil
}
