package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCosineSimilaritySelf 向量与自身的相似度为1
func TestCosineSimilaritySelf(t *testing.T) {
	v := []float64{0.3, -0.5, 0.8, 0.1}

	got, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

// TestCosineSimilarityOpposite 方向相反的向量映射到0
func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-1, -2, -3}

	got, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)
}

// TestCosineSimilarityOrthogonal 正交向量映射到0.5
func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}

	got, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)
}

// TestCosineSimilaritySymmetric 参数顺序不影响结果
func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float64{0.2, 0.9, -0.4}
	b := []float64{-0.7, 0.1, 0.5}

	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

// TestCosineSimilarityZeroVector 零向量与任何向量的相似度定义为0
func TestCosineSimilarityZeroVector(t *testing.T) {
	zero := []float64{0, 0, 0}
	v := []float64{1, 2, 3}

	got, err := CosineSimilarity(zero, v)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = CosineSimilarity(v, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

// TestCosineSimilarityDimensionMismatch 维度不一致必须报错，不允许截断
func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

// TestCosineSimilarityRange 任意输入的结果都应落在 [0,1]
func TestCosineSimilarityRange(t *testing.T) {
	vectors := [][]float64{
		{1, 1, 1},
		{-1, 2, -3},
		{0.001, -0.002, 0.003},
		{1e6, -1e6, 1e6},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			got, err := CosineSimilarity(a, b)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
			assert.False(t, math.IsNaN(got))
		}
	}
}
