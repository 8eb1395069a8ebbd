package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// EmbeddingModulePrefix 嵌入模块
	EmbeddingModulePrefix = "embedding"
	// VocabModulePrefix 技能词表模块
	VocabModulePrefix = "vocab"

	// EntityVector 向量实体
	EntityVector = "vector"
	// EntityRegistry 词表实体
	EntityRegistry = "registry"

	// KeyEmbeddingVector 文本嵌入向量缓存 (STRING, JSON编码)
	// 格式: app:embedding:vector:{sha256(model|dims|text)}
	KeyEmbeddingVector = AppPrefix + ":" + EmbeddingModulePrefix + ":" + EntityVector + ":%s"

	// KeyVocabRegistry 技能词表缓存 (STRING, JSON编码)
	// 格式: app:vocab:registry:{source}
	KeyVocabRegistry = AppPrefix + ":" + VocabModulePrefix + ":" + EntityRegistry + ":%s"
)
