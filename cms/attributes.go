package cms

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// Attributes holds addon metadata attached to an article. It is stored
// as a JSON object in a single column; the schema of the keys belongs
// to whoever wrote them, not to the core.
type Attributes map[string]string

// Value serializes the map as JSON for storage. An empty map is stored
// as NULL so untouched rows stay cheap.
func (a Attributes) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling attributes")
	}
	return string(b), nil
}

// Scan deserializes a JSON object from storage.
func (a *Attributes) Scan(src interface{}) error {
	m, err := scanJSONMap(src)
	if err != nil {
		return errors.Wrap(err, "scanning attributes")
	}
	*a = m
	return nil
}

// Clone returns an independent copy of the map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SliceValues is the module-defined key/value payload of a Slice,
// stored as JSON like Attributes.
type SliceValues map[string]string

// Value serializes the map as JSON for storage.
func (v SliceValues) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling slice values")
	}
	return string(b), nil
}

// Scan deserializes a JSON object from storage.
func (v *SliceValues) Scan(src interface{}) error {
	m, err := scanJSONMap(src)
	if err != nil {
		return errors.Wrap(err, "scanning slice values")
	}
	*v = m
	return nil
}

// Clone returns an independent copy of the payload.
func (v SliceValues) Clone() SliceValues {
	if v == nil {
		return nil
	}
	out := make(SliceValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func scanJSONMap(src interface{}) (map[string]string, error) {
	if src == nil {
		return nil, nil
	}

	var raw []byte
	switch s := src.(type) {
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return nil, errors.Errorf("unsupported source type %T", src)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
