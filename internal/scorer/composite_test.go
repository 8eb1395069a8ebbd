package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWeightsValidate 负权重与全零权重应被拒绝
func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, Weights{Semantic: 0.7, Skills: 0.3}.Validate())
	assert.NoError(t, Weights{Semantic: 1, Skills: 0}.Validate())

	assert.ErrorIs(t, Weights{Semantic: -0.1, Skills: 0.3}.Validate(), ErrInvalidWeights)
	assert.ErrorIs(t, Weights{Semantic: 0.7, Skills: -1}.Validate(), ErrInvalidWeights)
	assert.ErrorIs(t, Weights{Semantic: 0, Skills: 0}.Validate(), ErrInvalidWeights)
}

// TestCompositeDefault 默认权重下的加权和
func TestCompositeDefault(t *testing.T) {
	got, err := Composite(0.8, 0.5, DefaultWeights())
	require.NoError(t, err)
	assert.InDelta(t, 0.8*0.7+0.5*0.3, got, 1e-9)
}

// TestCompositeRenormalizes 权重之和不为1时重新归一化
func TestCompositeRenormalizes(t *testing.T) {
	// 7/3 与 0.7/0.3 等价
	a, err := Composite(0.6, 0.9, Weights{Semantic: 7, Skills: 3})
	require.NoError(t, err)
	b, err := Composite(0.6, 0.9, Weights{Semantic: 0.7, Skills: 0.3})
	require.NoError(t, err)
	assert.InDelta(t, b, a, 1e-9)
}

// TestCompositeSingleComponent 一边权重为零时结果等于另一个分量
func TestCompositeSingleComponent(t *testing.T) {
	got, err := Composite(0.42, 0.99, Weights{Semantic: 1, Skills: 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.42, got, 1e-9)

	got, err = Composite(0.42, 0.99, Weights{Semantic: 0, Skills: 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.99, got, 1e-9)
}

// TestCompositeInvalidWeights 非法权重在计算前拒绝
func TestCompositeInvalidWeights(t *testing.T) {
	_, err := Composite(0.5, 0.5, Weights{Semantic: 0, Skills: 0})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

// TestCompositeMonotonic 任一分量增大时综合分数不应减小
func TestCompositeMonotonic(t *testing.T) {
	w := DefaultWeights()

	low, err := Composite(0.3, 0.5, w)
	require.NoError(t, err)
	high, err := Composite(0.6, 0.5, w)
	require.NoError(t, err)
	assert.Greater(t, high, low)

	low, err = Composite(0.5, 0.2, w)
	require.NoError(t, err)
	high, err = Composite(0.5, 0.8, w)
	require.NoError(t, err)
	assert.Greater(t, high, low)
}

// TestSkillsOverlap 覆盖率为命中数除以要求数
func TestSkillsOverlap(t *testing.T) {
	assert.Equal(t, 0.5, SkillsOverlap(1, 2))
	assert.Equal(t, 1.0, SkillsOverlap(3, 3))
	assert.Equal(t, 0.0, SkillsOverlap(0, 4))
}

// TestSkillsOverlapNoRequirements 岗位无技能要求时覆盖率为1，不是错误
func TestSkillsOverlapNoRequirements(t *testing.T) {
	assert.Equal(t, 1.0, SkillsOverlap(0, 0))
	assert.Equal(t, 1.0, SkillsOverlap(5, 0))
}
