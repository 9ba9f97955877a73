package array

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOf_ShapeValidation(t *testing.T) {
	a, err := Of([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	require.Equal(t, Float32, a.Type())
	require.Equal(t, []int{3, 2}, a.Shape())
	require.Equal(t, 3, a.Len())
	require.Equal(t, 6, a.NumElems())

	_, err = Of([]float32{1, 2, 3}, 2, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMatrix(t *testing.T) {
	a, err := Matrix([][]float32{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, a.Shape())

	vals, err := Values[float32](a)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3, 4, 5, 6}, vals)

	_, err = Matrix([][]float32{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrRaggedRows)
}

func TestFromBytes_InferredDimension(t *testing.T) {
	src, err := Of([]int64{10, 20, 30, 40}, 4)
	require.NoError(t, err)

	a, err := FromBytes(src.Bytes(), Int64, -1, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, a.Shape())

	vals, err := Values[int64](a)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20, 30, 40}, vals)
}

func TestFromBytes_Corruption(t *testing.T) {
	// 10 bytes is not a multiple of float32 size.
	_, err := FromBytes(make([]byte, 10), Float32, -1, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)

	// 12 bytes = 3 float32, not reshapable to (-1, 2).
	_, err = FromBytes(make([]byte, 12), Float32, -1, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromBytes_Empty(t *testing.T) {
	a, err := FromBytes(nil, Float32, -1, 4)
	require.NoError(t, err)
	require.Equal(t, []int{0, 4}, a.Shape())
	require.Equal(t, 0, a.Len())
}

func TestValues_TypeMismatch(t *testing.T) {
	a := Vector([]float32{1, 2, 3})
	_, err := Values[int32](a)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValues_UnalignedCopy(t *testing.T) {
	src := Vector([]int64{1, 2, 3})
	// Shift the buffer by one byte to force the aligned-copy path.
	raw := make([]byte, len(src.Bytes())+1)
	copy(raw[1:], src.Bytes())

	a, err := FromBytes(raw[1:], Int64, 3)
	require.NoError(t, err)

	vals, err := Values[int64](a)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, vals)
}

func TestReshape(t *testing.T) {
	a, err := Of([]float32{1, 2, 3, 4, 5, 6}, 6)
	require.NoError(t, err)

	b, err := a.Reshape(-1, 3)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, b.Shape())

	_, err = a.Reshape(4, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEqual(t *testing.T) {
	a, err := Matrix([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	b, err := Matrix([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c, err := Matrix([][]float32{{1, 2}, {3, 5}})
	require.NoError(t, err)
	require.False(t, a.Equal(c))

	flat, err := a.Reshape(4)
	require.NoError(t, err)
	require.False(t, a.Equal(flat))
}

func TestTypeSizes(t *testing.T) {
	require.Equal(t, 4, Float32.Size())
	require.Equal(t, 8, Float64.Size())
	require.Equal(t, 8, Int64.Size())
	require.Equal(t, 1, Uint8.Size())
	require.Equal(t, 0, Invalid.Size())
}
