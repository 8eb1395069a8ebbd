package parser

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"
)

// TextEmbedder 文本向量化接口 (符合 cloudwego/eino 规范)。
// 实现必须保证：同一文本无论单条还是批量提交，得到的向量逐位一致。
type TextEmbedder interface {
	// EmbedStrings 将一批文本转换为向量表示，结果顺序与输入一致
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)

	// GetDimensions 返回嵌入向量的维度
	GetDimensions() int
}
