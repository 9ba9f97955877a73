package array

import (
	"bytes"
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrShapeMismatch is returned when a shape does not match the data length.
	ErrShapeMismatch = errors.New("array: shape does not match data length")

	// ErrTypeMismatch is returned when a typed view is requested for a
	// different element type than the array holds.
	ErrTypeMismatch = errors.New("array: element type mismatch")

	// ErrRaggedRows is returned when matrix rows have different lengths.
	ErrRaggedRows = errors.New("array: ragged rows")

	// ErrBigEndian is returned at startup on big-endian systems.
	ErrBigEndian = errors.New("array: big-endian systems are not supported")
)

func init() {
	var probe uint16 = 0x0001
	if *(*byte)(unsafe.Pointer(&probe)) != 1 {
		panic(ErrBigEndian)
	}
}

// Type identifies the scalar element type of an Array.
type Type uint8

const (
	Invalid Type = iota
	Float32
	Float64
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
)

// Size returns the size of one element in bytes, or 0 for Invalid.
func (t Type) Size() int {
	switch t {
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(t))
	}
}

// ParseType returns the Type named by s (the String form), or Invalid.
func ParseType(s string) Type {
	for t := Float32; t <= Uint64; t++ {
		if t.String() == s {
			return t
		}
	}
	return Invalid
}

// Scalar is the set of element types an Array can hold.
type Scalar interface {
	float32 | float64 | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// TypeOf returns the Type constant for the scalar type T.
func TypeOf[T Scalar]() Type {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	default:
		return Invalid
	}
}

// Array is a typed, fixed-shape numeric array over contiguous row-major
// native-order bytes. The zero value is not usable; construct via Of, Matrix
// or FromBytes.
type Array struct {
	typ   Type
	shape []int
	data  []byte
}

// Of builds an Array from a flat scalar slice and an explicit shape.
// The data is copied so the Array owns its buffer.
func Of[T Scalar](data []T, shape ...int) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, have %d", ErrShapeMismatch, shape, n, len(data))
	}

	t := TypeOf[T]()
	buf := make([]byte, len(data)*t.Size())
	if len(data) > 0 {
		copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(buf)))
	}

	return &Array{typ: t, shape: append([]int(nil), shape...), data: buf}, nil
}

// Vector builds a rank-1 Array from a scalar slice.
func Vector[T Scalar](data []T) *Array {
	a, _ := Of(data, len(data))
	return a
}

// Matrix builds a rank-2 Array from a slice of rows. All rows must have the
// same length. An empty row set yields a (0, 0) matrix.
func Matrix[T Scalar](rows [][]T) (*Array, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}

	flat := make([]T, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d", ErrRaggedRows, i, len(row), cols)
		}
		flat = append(flat, row...)
	}

	return Of(flat, len(rows), cols)
}

// FromBytes reinterprets a raw byte buffer as an Array of element type t.
// At most one shape dimension may be -1; it is inferred from the buffer
// length. A buffer length that is not a multiple of the row size fails with
// ErrShapeMismatch, which is the truncation/corruption signal for data read
// back from disk. The buffer is not copied.
func FromBytes(b []byte, t Type, shape ...int) (*Array, error) {
	elemSize := t.Size()
	if elemSize == 0 {
		return nil, fmt.Errorf("%w: invalid element type", ErrTypeMismatch)
	}
	if len(b)%elemSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of element size %d", ErrShapeMismatch, len(b), elemSize)
	}

	total := len(b) / elemSize
	inferred := -1
	known := 1

	for i, d := range shape {
		switch {
		case d == -1:
			if inferred != -1 {
				return nil, fmt.Errorf("%w: multiple inferred dimensions in %v", ErrShapeMismatch, shape)
			}
			inferred = i
		case d < 0:
			return nil, fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		default:
			known *= d
		}
	}

	resolved := append([]int(nil), shape...)
	if inferred >= 0 {
		if known == 0 || total%known != 0 {
			return nil, fmt.Errorf("%w: cannot reshape %d elements to %v", ErrShapeMismatch, total, shape)
		}
		resolved[inferred] = total / known
	} else if known != total {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, have %d", ErrShapeMismatch, shape, known, total)
	}

	return &Array{typ: t, shape: resolved, data: b}, nil
}

// Type returns the element type.
func (a *Array) Type() Type { return a.typ }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Shape returns the dimensions. The returned slice must not be modified.
func (a *Array) Shape() []int { return a.shape }

// Len returns the length of the first dimension, or 0 for rank 0.
func (a *Array) Len() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// NumElems returns the total number of elements.
func (a *Array) NumElems() int {
	return len(a.data) / a.typ.Size()
}

// Bytes returns the raw native-order bytes. The returned slice aliases the
// array's buffer and must not be modified.
func (a *Array) Bytes() []byte { return a.data }

// Reshape returns a view of the same buffer with a new shape. At most one
// dimension may be -1.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	return FromBytes(a.data, a.typ, shape...)
}

// Equal reports whether two arrays have identical type, shape and contents.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.typ != b.typ || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return bytes.Equal(a.data, b.data)
}

func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, shape=%v)", a.typ, a.shape)
}

// Values returns a typed view of the array's elements. If the underlying
// buffer is suitably aligned the view aliases it (zero-copy); otherwise an
// aligned copy is returned.
func Values[T Scalar](a *Array) ([]T, error) {
	want := TypeOf[T]()
	if a.typ != want {
		return nil, fmt.Errorf("%w: array holds %s, requested %s", ErrTypeMismatch, a.typ, want)
	}
	if len(a.data) == 0 {
		return nil, nil
	}

	n := len(a.data) / a.typ.Size()
	if uintptr(unsafe.Pointer(&a.data[0]))%uintptr(a.typ.Size()) == 0 {
		return unsafe.Slice((*T)(unsafe.Pointer(&a.data[0])), n), nil
	}

	// Unaligned source (e.g. sliced out of a larger read buffer).
	out := make([]T, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), len(a.data)), a.data)
	return out, nil
}
