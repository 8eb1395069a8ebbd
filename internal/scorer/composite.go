package scorer

import (
	"errors"
	"fmt"

	"ai-match-go/internal/constants"
)

// ErrInvalidWeights 调用方权重配置非法（负数或全零），在任何计算开始前拒绝
var ErrInvalidWeights = errors.New("非法的打分权重")

// Weights 综合打分权重。权重之和不要求为1，计算时会重新归一化。
// 每次调用显式传入，没有全局可变状态，便于可复现的A/B实验。
type Weights struct {
	Semantic float64 `json:"semantic_weight"` // 语义相似度权重，>=0
	Skills   float64 `json:"skills_weight"`   // 技能覆盖率权重，>=0
}

// DefaultWeights 默认偏向语义相似度（沿用线上验证过的 0.7/0.3 配比）
func DefaultWeights() Weights {
	return Weights{
		Semantic: constants.DefaultSemanticWeight,
		Skills:   constants.DefaultSkillsWeight,
	}
}

// Validate 校验权重：不允许负值，不允许两者同时为零（除零）
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Skills < 0 {
		return fmt.Errorf("%w: 权重不能为负 (semantic=%v, skills=%v)", ErrInvalidWeights, w.Semantic, w.Skills)
	}
	if w.Semantic == 0 && w.Skills == 0 {
		return fmt.Errorf("%w: 权重不能同时为零", ErrInvalidWeights)
	}
	return nil
}

// Composite 计算综合分数：加权和除以权重之和。
// 对固定输入和权重是确定性纯函数，且对两个输入分量单调非减。
func Composite(semantic, skillsOverlap float64, w Weights) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	return (semantic*w.Semantic + skillsOverlap*w.Skills) / (w.Semantic + w.Skills), nil
}

// SkillsOverlap 计算技能覆盖率：|命中技能| / |要求技能|。
// 要求技能为空时定义为1.0——没有技能要求就没有技能惩罚，不是错误。
func SkillsOverlap(matchedCount, requiredCount int) float64 {
	if requiredCount <= 0 {
		return 1.0
	}
	return float64(matchedCount) / float64(requiredCount)
}
