package mc

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValueKind distinguishes the two shapes a Value may take.
type ValueKind int

const (
	// ScalarKind marks a Value holding a single float64.
	ScalarKind ValueKind = iota
	// VectorKind marks a Value holding a fixed-dimension []float64.
	VectorKind
)

// Value is a closed scalar-or-vector numeric quantity. Property calculators
// and conditions exchange Values instead of untyped payloads so that the
// shape of every quantity is explicit.
type Value struct {
	kind   ValueKind
	scalar float64
	vector []float64
}

// Scalar constructs a scalar Value.
func Scalar(x float64) Value {
	return Value{kind: ScalarKind, scalar: x}
}

// Vector constructs a vector Value. The slice is copied.
func Vector(v []float64) Value {
	cp := make([]float64, len(v))
	copy(cp, v)
	return Value{kind: VectorKind, vector: cp}
}

// Kind reports whether the Value is a scalar or a vector.
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the scalar payload. Panics if the Value is a vector.
func (v Value) Float() float64 {
	if v.kind != ScalarKind {
		panic("mc: Float called on vector Value")
	}
	return v.scalar
}

// Components returns the Value unrolled as a []float64: a scalar becomes a
// one-element slice, a vector is returned as a copy.
func (v Value) Components() []float64 {
	if v.kind == ScalarKind {
		return []float64{v.scalar}
	}
	cp := make([]float64, len(v.vector))
	copy(cp, v.vector)
	return cp
}

// Dim returns the number of components (1 for scalars).
func (v Value) Dim() int {
	if v.kind == ScalarKind {
		return 1
	}
	return len(v.vector)
}

// Add returns v + w componentwise. Panics if the shapes differ.
func (v Value) Add(w Value) Value {
	if v.kind != w.kind || v.Dim() != w.Dim() {
		panic("mc: Add on Values of different shape")
	}
	if v.kind == ScalarKind {
		return Scalar(v.scalar + w.scalar)
	}
	out := make([]float64, len(v.vector))
	for i := range out {
		out[i] = v.vector[i] + w.vector[i]
	}
	return Value{kind: VectorKind, vector: out}
}

// Sub returns v - w componentwise. Panics if the shapes differ.
func (v Value) Sub(w Value) Value {
	return v.Add(w.Scale(-1))
}

// Scale returns c * v componentwise.
func (v Value) Scale(c float64) Value {
	if v.kind == ScalarKind {
		return Scalar(c * v.scalar)
	}
	out := make([]float64, len(v.vector))
	for i := range out {
		out[i] = c * v.vector[i]
	}
	return Value{kind: VectorKind, vector: out}
}

// Dot returns the inner product of two Values of equal dimension.
func (v Value) Dot(w Value) float64 {
	a, b := v.Components(), w.Components()
	if len(a) != len(b) {
		panic("mc: Dot on Values of different dimension")
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// MarshalJSON renders scalars as numbers and vectors as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == ScalarKind {
		return json.Marshal(v.scalar)
	}
	return json.Marshal(v.vector)
}

// UnmarshalJSON accepts a number (scalar) or an array of numbers (vector).
func (v *Value) UnmarshalJSON(data []byte) error {
	var x float64
	if err := json.Unmarshal(data, &x); err == nil {
		*v = Scalar(x)
		return nil
	}
	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return fmt.Errorf("value must be a number or array of numbers: %w", err)
	}
	*v = Value{kind: VectorKind, vector: vec}
	return nil
}

// MarshalYAML renders scalars as numbers and vectors as sequences.
func (v Value) MarshalYAML() (interface{}, error) {
	if v.kind == ScalarKind {
		return v.scalar, nil
	}
	return v.vector, nil
}

// UnmarshalYAML accepts a number (scalar) or a sequence of numbers (vector).
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var x float64
	if err := unmarshal(&x); err == nil {
		*v = Scalar(x)
		return nil
	}
	var vec []float64
	if err := unmarshal(&vec); err != nil {
		return fmt.Errorf("value must be a number or sequence of numbers: %w", err)
	}
	*v = Value{kind: VectorKind, vector: vec}
	return nil
}

// ValueMap maps quantity names to scalar-or-vector Values. It is the
// canonical exchange format for conditions and configuration-independent
// parameters, and round-trips exactly through JSON and YAML.
type ValueMap map[string]Value

// Names returns the keys in sorted order.
func (m ValueMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Scalar returns the named scalar entry, or an error if it is missing or
// has the wrong shape. Missing required conditions are configuration
// errors, reported before a run starts.
func (m ValueMap) Scalar(name string) (float64, error) {
	v, ok := m[name]
	if !ok {
		return 0, fmt.Errorf("missing required scalar value %q", name)
	}
	if v.Kind() != ScalarKind {
		return 0, fmt.Errorf("value %q is not a scalar", name)
	}
	return v.Float(), nil
}

// Vector returns the named vector entry, or an error if it is missing or
// has the wrong shape.
func (m ValueMap) Vector(name string) ([]float64, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing required vector value %q", name)
	}
	if v.Kind() != VectorKind {
		return nil, fmt.Errorf("value %q is not a vector", name)
	}
	return v.Components(), nil
}
