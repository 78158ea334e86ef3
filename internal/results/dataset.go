// Package results computes derived engineering result datasets from raw
// imported rows. Providers are pure: identical input rows always produce an
// identical dataset, which is what makes the cached blobs trustworthy.
package results

import (
	"encoding/json"
	"fmt"
)

// Scope identifies which cache table a dataset belongs to.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeElement Scope = "element"
	ScopeJoint   Scope = "joint"
)

// Value is one dataset cell holding one or more floats. A single float
// marshals as a JSON scalar, larger cells as arrays; both forms decode.
type Value struct {
	vals []float64
}

// Scalar wraps a single float.
func Scalar(v float64) Value {
	return Value{vals: []float64{v}}
}

// List wraps multiple floats, e.g. a min/max envelope pair.
func List(vs ...float64) Value {
	out := make([]float64, len(vs))
	copy(out, vs)
	return Value{vals: out}
}

// Floats returns the cell contents.
func (v Value) Floats() []float64 {
	return v.vals
}

// IsScalar reports whether the cell holds exactly one float.
func (v Value) IsScalar() bool {
	return len(v.vals) == 1
}

// MarshalJSON encodes a one-element cell as a scalar, anything else as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.vals) == 1 {
		return json.Marshal(v.vals[0])
	}
	if v.vals == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.vals)
}

// UnmarshalJSON accepts either a scalar or an array of floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		v.vals = []float64{scalar}
		return nil
	}

	var list []float64
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("results: cell is neither scalar nor array: %w", err)
	}
	v.vals = list
	return nil
}

// Row is one dataset row keyed by the provider's natural grouping key
// (story, element, joint, or a composite such as pier/story).
type Row struct {
	Key   string  `json:"key"`
	Cells []Value `json:"cells"`
}

// Dataset is a computed result matrix: one column per output label, one row
// per group. This is the unit stored in the cache tables.
type Dataset struct {
	ResultType string   `json:"result_type"`
	Direction  string   `json:"direction,omitempty"`
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows"`
}

// Encode serializes the dataset for cache storage.
func (d *Dataset) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Decode restores a dataset from a cached blob.
func Decode(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("results: decode cached dataset: %w", err)
	}
	return &d, nil
}
