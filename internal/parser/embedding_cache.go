package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"ai-match-go/internal/constants"
	"ai-match-go/internal/storage"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
)

// CachedEmbedder 在TextEmbedder之上叠加Redis缓存。
// 缓存键是 sha256(model|dims|text) 的指纹：同一模型版本下同一归一化文本
// 的向量逐位可复现，因此可以安全复用。缓存故障只降级为
// 直连后端，绝不影响嵌入结果。
type CachedEmbedder struct {
	inner  TextEmbedder
	redis  *storage.Redis
	model  string
	logger zerolog.Logger
}

// NewCachedEmbedder 包装一个嵌入器，返回带缓存的实现
func NewCachedEmbedder(inner TextEmbedder, redis *storage.Redis, model string, logger zerolog.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		redis:  redis,
		model:  model,
		logger: logger.With().Str("component", "CachedEmbedder").Logger(),
	}
}

// GetDimensions 实现 TextEmbedder 接口
func (c *CachedEmbedder) GetDimensions() int {
	return c.inner.GetDimensions()
}

// EmbedStrings 实现 TextEmbedder 接口：先查缓存，只把未命中的文本
// 发给后端，结果按输入顺序重组后回填缓存。
func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	out := make([][]float64, len(texts))
	var missTexts []string
	var missIndexes []int

	for i, text := range texts {
		vec, err := c.redis.GetEmbedding(ctx, c.fingerprint(text))
		if err == nil {
			out[i] = vec
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn().Err(err).Msg("读取嵌入缓存失败，回退到后端")
		}
		missTexts = append(missTexts, text)
		missIndexes = append(missIndexes, i)
	}

	if len(missTexts) == 0 {
		c.logger.Debug().Int("texts", len(texts)).Msg("嵌入缓存全部命中")
		return out, nil
	}

	vectors, err := c.inner.EmbedStrings(ctx, missTexts, opts...)
	if err != nil {
		return nil, err
	}

	for j, vec := range vectors {
		i := missIndexes[j]
		out[i] = vec
		if setErr := c.redis.SetEmbedding(ctx, c.fingerprint(texts[i]), vec, constants.EmbeddingCacheDuration); setErr != nil {
			c.logger.Warn().Err(setErr).Msg("写入嵌入缓存失败")
		}
	}

	c.logger.Debug().
		Int("texts", len(texts)).
		Int("cache_hits", len(texts)-len(missTexts)).
		Msg("嵌入完成（部分来自缓存）")
	return out, nil
}

// fingerprint 计算缓存键：模型与维度参与指纹，模型升级后旧缓存自动失效
func (c *CachedEmbedder) fingerprint(text string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", c.model, c.inner.GetDimensions(), text)))
	return hex.EncodeToString(h[:])
}
