package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is an ordered list of strings stored as a single JSON-encoded
// text column. JSON is used instead of a joined string so that elements may
// contain arbitrary characters, including any would-be delimiter.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner. NULL and the empty string decode to an empty
// list, never to nil semantics the caller has to special-case.
func (l *StringList) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported string list source type %T", src)
	}

	if raw == "" {
		*l = StringList{}
		return nil
	}

	var decoded []string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	if decoded == nil {
		decoded = []string{}
	}
	*l = decoded
	return nil
}
