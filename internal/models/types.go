package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a JSON-encoded list of ids stored in a TEXT column.
// Party member sets and item queues use it so every party mutation
// stays a single-row write.
type StringList []string

// Value implements driver.Valuer for storing the list as JSON
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for reading the JSON list back
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}

	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to unmarshal string list: %w", err)
	}
	return nil
}

// Contains reports whether id is present in the list
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with id removed
func (l StringList) Without(id string) StringList {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
