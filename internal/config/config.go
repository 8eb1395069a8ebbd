package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	// 嵌入服务配置
	Embedding EmbeddingConfig `yaml:"embedding"`

	// 匹配与打分配置
	Matching MatchingConfig `yaml:"matching"`

	// 技能词表配置
	Vocabulary VocabularyConfig `yaml:"vocabulary"`

	// Redis配置（嵌入向量缓存）
	Redis RedisConfig `yaml:"redis"`

	// MySQL配置（技能词表来源之一）
	MySQL MySQLConfig `yaml:"mysql"`

	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// 链路追踪配置
	Tracing TracingConfig `yaml:"tracing"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`
}

// EmbeddingConfig 嵌入后端配置 (OpenAI兼容的 /embeddings 接口)
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	// 单次HTTP请求的最大文本数，超出时在内部拆分批次
	BatchSize int `yaml:"batch_size"`
	// 单次HTTP请求超时(秒)
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	// 是否启用Redis缓存
	CacheEnabled bool `yaml:"cache_enabled"`
}

// MatchingConfig 匹配与打分的默认参数，均可被单次请求覆盖
type MatchingConfig struct {
	SemanticWeight     float64 `yaml:"semantic_weight"`      // 语义相似度权重
	SkillsWeight       float64 `yaml:"skills_weight"`        // 技能覆盖率权重
	TopK               int     `yaml:"top_k"`                // 默认返回结果数
	EmbeddingTimeoutMS int     `yaml:"embedding_timeout_ms"` // 单次排序调用的嵌入总超时(毫秒)
	EmbedConcurrency   int     `yaml:"embed_concurrency"`    // 简历并行嵌入的工作协程数
}

// VocabularyConfig 技能词表配置
type VocabularyConfig struct {
	// 词表来源标识符，例如 "file:internal/skills/skills_registry.json" 或 "mysql:skill_entries"
	Source string `yaml:"source"`
	// 提取策略: "vocabulary"（仅词表匹配）或 "augmented"（词表+启发式识别）
	ExtractorStrategy string `yaml:"extractor_strategy"`
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
}

// MySQLConfig MySQL配置结构
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 连接池设置
	MaxIdleConns int `yaml:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int `yaml:"max_open_conns"` // 最大打开连接数
	// 超时设置
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"` // 连接超时(秒)
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
	// API Key，为空时不启用keyauth鉴权
	APIKey string `yaml:"api_key,omitempty"`
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // OTLP gRPC collector 地址，例如 "localhost:4317"
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	// 如果未指定配置文件路径，则尝试在默认位置查找
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".ai-match-go", "config.yaml"),
		}

		// 获取当前可执行文件路径
		execPath, err := os.Executable()
		if err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths, filepath.Join(execDir, "config.yaml"))
			searchPaths = append(searchPaths, filepath.Join(execDir, "..", "config.yaml"))
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		// 仍找不到配置文件时：测试环境下返回默认配置，否则使用默认路径
		if configPath == "" {
			if inTestEnvironment() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	// 检查文件是否存在
	if _, err := os.Stat(configPath); err != nil {
		if inTestEnvironment() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从环境变量覆盖配置（如果存在）
	if envKey := os.Getenv("EMBEDDING_API_KEY"); envKey != "" {
		config.Embedding.APIKey = envKey
	}
	if envURL := os.Getenv("EMBEDDING_BASE_URL"); envURL != "" {
		config.Embedding.BaseURL = envURL
	}
	if envModel := os.Getenv("EMBEDDING_MODEL"); envModel != "" {
		config.Embedding.Model = envModel
	}

	applyDefaults(&config)
	return &config, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不尝试从环境变量覆盖
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

// applyDefaults 填充未在YAML中指定的默认值
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if config.Embedding.Dimensions == 0 {
		config.Embedding.Dimensions = 384
	}
	if config.Embedding.BatchSize == 0 {
		config.Embedding.BatchSize = 16
	}
	if config.Embedding.RequestTimeoutSeconds == 0 {
		config.Embedding.RequestTimeoutSeconds = 15
	}
	if config.Matching.SemanticWeight == 0 && config.Matching.SkillsWeight == 0 {
		config.Matching.SemanticWeight = 0.7
		config.Matching.SkillsWeight = 0.3
	}
	if config.Matching.TopK == 0 {
		config.Matching.TopK = 20
	}
	if config.Matching.EmbeddingTimeoutMS == 0 {
		config.Matching.EmbeddingTimeoutMS = 30000
	}
	if config.Matching.EmbedConcurrency == 0 {
		config.Matching.EmbedConcurrency = 4
	}
	if config.Vocabulary.Source == "" {
		config.Vocabulary.Source = "file:internal/skills/skills_registry.json"
	}
	if config.Vocabulary.ExtractorStrategy == "" {
		config.Vocabulary.ExtractorStrategy = "augmented"
	}
}

// inTestEnvironment 粗略判断是否运行在 go test 环境中
func inTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// 创建一个默认配置，用于测试环境
func createDefaultConfig() *Config {
	config := &Config{}
	config.Embedding.BaseURL = "http://localhost:8081/v1/embeddings"
	applyDefaults(config)
	return config
}
