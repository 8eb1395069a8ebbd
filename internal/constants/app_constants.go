package constants

import "time"

const (
	// Application-level constants
	DefaultSemanticWeight = 0.7 // 语义相似度默认权重
	DefaultSkillsWeight   = 0.3 // 技能覆盖率默认权重
	DefaultTopK           = 20  // 默认返回的结果数量
	DefaultDimensions     = 384 // 默认向量维度 (all-MiniLM-L6-v2)

	// DefaultEmbeddingTimeout 单次排序调用中嵌入阶段的总超时
	DefaultEmbeddingTimeout = 30 * time.Second

	// DefaultEmbedConcurrency 简历并行嵌入的默认工作协程数
	DefaultEmbedConcurrency = 4

	// DefaultEmbedBatchSize 嵌入后端单次请求的最大文本数
	DefaultEmbedBatchSize = 16

	// EmbeddingCacheDuration 嵌入向量缓存的过期时间
	EmbeddingCacheDuration = 24 * time.Hour

	// VocabCacheDuration 技能词表缓存的过期时间。词表变更频率低，
	// 但仍需定期刷新以吸收外部来源的更新
	VocabCacheDuration = 12 * time.Hour

	// ScoreDisplayPrecision 对外展示分数保留的小数位数；内部排序保持全精度
	ScoreDisplayPrecision = 3
)
