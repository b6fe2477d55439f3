package calipso

import (
	"fmt"
	"reflect"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// DType is the element type of the dataset an Array was read from.
type DType uint8

const (
	Float64 DType = iota
	Float32
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
)

var dtypeNames = []string{
	"float64",
	"float32",
	"int8",
	"int16",
	"int32",
	"int64",
	"uint8",
	"uint16",
	"uint32",
	"uint64",
}

func (t DType) String() string {
	if int(t) < len(dtypeNames) {
		return dtypeNames[t]
	}
	return fmt.Sprintf("DType(%d)", uint8(t))
}

var kindToDType = map[reflect.Kind]DType{
	reflect.Float64: Float64,
	reflect.Float32: Float32,
	reflect.Int8:    Int8,
	reflect.Int16:   Int16,
	reflect.Int32:   Int32,
	reflect.Int64:   Int64,
	reflect.Uint8:   Uint8,
	reflect.Uint16:  Uint16,
	reflect.Uint32:  Uint32,
	reflect.Uint64:  Uint64,
}

// Array is a homogeneous numeric array stored in row-major order.
//
// Values are kept as float64 regardless of the element type of the source
// dataset; DType records that type so that consumers can convert back.
type Array struct {
	dtype  DType
	shape  []int
	values []float64
}

// NewArray creates an array of the given element type and shape backed by
// values. It panics if the shape does not describe len(values) elements.
func NewArray(dtype DType, shape []int, values []float64) *Array {
	if size(shape) != len(values) {
		panic(fmt.Sprintf("calipso: shape %v does not match %d values", shape, len(values)))
	}
	return &Array{
		dtype:  dtype,
		shape:  slices.Clone(shape),
		values: values,
	}
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// FromValues converts the nested slices returned by the HDF5 reader, e.g.
// [][]float32, into an Array. Scalars become rank 0 arrays.
func FromValues(v any) (*Array, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	t := rv.Type()
	depth := 0
	for t.Kind() == reflect.Slice {
		t = t.Elem()
		depth++
	}
	dtype, ok := kindToDType[t.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
	}

	shape := make([]int, depth)
	cur := rv
	for i := range shape {
		shape[i] = cur.Len()
		if cur.Len() == 0 {
			break
		}
		cur = cur.Index(0)
	}
	values := make([]float64, 0, size(shape))
	values, err := flatten(rv, shape, values)
	if err != nil {
		return nil, err
	}
	return &Array{dtype: dtype, shape: shape, values: values}, nil
}

func flatten(rv reflect.Value, shape []int, values []float64) ([]float64, error) {
	if len(shape) == 0 {
		return append(values, scalar(rv)), nil
	}
	if rv.Len() != shape[0] {
		return nil, &ShapeError{Shape: shape, Want: "rectangular array"}
	}
	var err error
	for i := 0; i < rv.Len(); i++ {
		values, err = flatten(rv.Index(i), shape[1:], values)
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

func scalar(rv reflect.Value) float64 {
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return float64(rv.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.values) }

// Len returns the length of the first dimension, i.e. the number of
// observations. A rank 0 array has length 1.
func (a *Array) Len() int {
	if len(a.shape) == 0 {
		return 1
	}
	return a.shape[0]
}

// Float64s returns the values in row-major order. The returned slice is
// shared with the array and must not be modified.
func (a *Array) Float64s() []float64 { return a.values }

// Float32s returns a copy of the values converted to float32.
func (a *Array) Float32s() []float32 {
	out := make([]float32, len(a.values))
	for i, v := range a.values {
		out[i] = float32(v)
	}
	return out
}

// Int8s returns a copy of the values converted to int8.
func (a *Array) Int8s() []int8 {
	out := make([]int8, len(a.values))
	for i, v := range a.values {
		out[i] = int8(v)
	}
	return out
}

// At returns the element at the given index. It panics if the number of
// indices does not match the rank or an index is out of range.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("calipso: %d indices for rank %d array", len(idx), len(a.shape)))
	}
	off := 0
	for i, j := range idx {
		if j < 0 || j >= a.shape[i] {
			panic(fmt.Sprintf("calipso: index %d out of range [0,%d)", j, a.shape[i]))
		}
		off = off*a.shape[i] + j
	}
	return a.values[off]
}

// Column returns column j of a rank 2 array as a rank 1 array.
func (a *Array) Column(j int) (*Array, error) {
	if len(a.shape) != 2 || j < 0 || j >= a.shape[1] {
		return nil, &ShapeError{Shape: a.Shape(), Want: fmt.Sprintf("rank 2 with at least %d columns", j+1)}
	}
	rows, cols := a.shape[0], a.shape[1]
	out := make([]float64, rows)
	for i := range out {
		out[i] = a.values[i*cols+j]
	}
	return &Array{dtype: a.dtype, shape: []int{rows}, values: out}, nil
}

// Reshape returns a rank 2 view of the array with the given number of
// columns. The values are shared.
func (a *Array) Reshape(cols int) (*Array, error) {
	if cols <= 0 || len(a.values)%cols != 0 {
		return nil, &ShapeError{Shape: a.Shape(), Want: fmt.Sprintf("a multiple of %d elements", cols)}
	}
	return &Array{dtype: a.dtype, shape: []int{len(a.values) / cols, cols}, values: a.values}, nil
}

// Equal reports whether both arrays have the same element type, shape and
// values. NaNs compare equal.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return floats.Same(a.values, b.values)
}

func (a *Array) String() string {
	return fmt.Sprintf("%s%v%v", a.dtype, a.shape, a.values)
}

// apply returns a new array of the same shape holding fn of each value.
func (a *Array) apply(dtype DType, fn func(float64) float64) *Array {
	out := make([]float64, len(a.values))
	for i, v := range a.values {
		out[i] = fn(v)
	}
	return &Array{dtype: dtype, shape: a.Shape(), values: out}
}

// concatRows joins a and b along the first axis. It reports false when the
// ranks or the trailing dimensions differ.
func concatRows(a, b *Array) (*Array, bool) {
	if len(a.shape) != len(b.shape) || len(a.shape) == 0 {
		return nil, false
	}
	for i := 1; i < len(a.shape); i++ {
		if a.shape[i] != b.shape[i] {
			return nil, false
		}
	}
	dtype := a.dtype
	if b.dtype != dtype {
		dtype = Float64
	}
	values := make([]float64, 0, len(a.values)+len(b.values))
	values = append(values, a.values...)
	values = append(values, b.values...)
	shape := a.Shape()
	shape[0] += b.shape[0]
	return &Array{dtype: dtype, shape: shape, values: values}, true
}
