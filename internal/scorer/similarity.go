// Package scorer 实现语义相似度计算与综合打分。
// 全部为纯内存计算，无I/O，无共享可变状态。
package scorer

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch 两个向量维度不一致，通常意味着嵌入模型版本漂移。
// 该错误必须上抛，绝不通过截断等方式静默容忍。
var ErrDimensionMismatch = errors.New("嵌入向量维度不一致")

// CosineSimilarity 计算两个嵌入向量的余弦相似度并映射到 [0,1]。
//
// 映射策略：(cos+1)/2，对 [-1,1] 全区间做线性重缩放，全库统一使用。
// 任一向量为零向量时相似度定义为0（与任何方向都不相似）。
// 维度不一致时返回 ErrDimensionMismatch。
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: len(a)=%d, len(b)=%d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// 浮点误差可能使cos略微越界，收回 [-1,1]
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return (cos + 1) / 2, nil
}
