package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/siherrmann/nerval/helper"
)

// Metadata is free-form document or chunk metadata, stored as JSONB
type Metadata map[string]interface{}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for jsonb columns returned as bytes or text
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case Metadata:
		*m = v
		return nil
	case []byte:
		return m.decode(v)
	case string:
		return m.decode([]byte(v))
	default:
		return helper.NewError("scan metadata", fmt.Errorf("unsupported type %T", value))
	}
}

func (m *Metadata) decode(b []byte) error {
	decoded := Metadata{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return helper.NewError("decode metadata", err)
	}
	*m = decoded
	return nil
}

// String returns the string value of key or "" when missing or not a string
func (m Metadata) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
