package distance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	require.InDelta(t, 32.0, Dot([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-6)
	require.Equal(t, float32(0), Dot(nil, nil))
}

func TestSquaredL2(t *testing.T) {
	require.InDelta(t, 27.0, SquaredL2([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-6)
	require.Equal(t, float32(0), SquaredL2([]float32{1, 2}, []float32{1, 2}))
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	require.True(t, NormalizeL2InPlace(v))
	require.InDelta(t, 0.6, v[0], 1e-6)
	require.InDelta(t, 0.8, v[1], 1e-6)

	require.False(t, NormalizeL2InPlace([]float32{0, 0}))
	require.False(t, NormalizeL2InPlace(nil))

	src := []float32{0, 5}
	dst, ok := NormalizeL2Copy(src)
	require.True(t, ok)
	require.Equal(t, []float32{0, 5}, src)
	require.InDelta(t, 1.0, dst[1], 1e-6)
}

func TestProvider(t *testing.T) {
	f, err := Provider(MetricL2)
	require.NoError(t, err)
	require.InDelta(t, 2.0, f([]float32{0, 0}, []float32{1, 1}), 1e-6)

	f, err = Provider(MetricDot)
	require.NoError(t, err)
	require.InDelta(t, 2.0, f([]float32{1, 1}, []float32{1, 1}), 1e-6)

	_, err = Provider(Metric(99))
	require.Error(t, err)
}

func TestMetricSmaller(t *testing.T) {
	require.True(t, MetricL2.Smaller(1, 2))
	require.False(t, MetricL2.Smaller(2, 1))
	require.True(t, MetricDot.Smaller(2, 1))
	require.True(t, MetricCosine.Smaller(0.9, 0.5))
}
