package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-match-go/internal/config"
	"ai-match-go/internal/constants"
	"ai-match-go/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9" // Redis OpenTelemetry钩子
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,     // 默认10
		MinIdleConns: cfg.MinIdleConns, // 默认0
	}
	if cfg.DialTimeoutSeconds > 0 {
		opt.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	if cfg.ReadTimeoutSeconds > 0 {
		opt.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
	}
	if cfg.WriteTimeoutSeconds > 0 {
		opt.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	}

	client := redis.NewClient(opt)

	// 注册OpenTelemetry追踪钩子
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// GetEmbedding 读取缓存的嵌入向量。键是文本指纹(sha256)，未命中返回 ErrNotFound。
func (r *Redis) GetEmbedding(ctx context.Context, fingerprint string) ([]float64, error) {
	key := fmt.Sprintf(constants.KeyEmbeddingVector, fingerprint)
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err // redis.Nil 即 ErrNotFound
	}
	var vector []float64
	if err := json.Unmarshal(data, &vector); err != nil {
		// 错误信息中的键经过截断，避免日志和span携带超长内容
		return nil, fmt.Errorf("反序列化缓存向量失败 (key=%s): %w", tracing.SafeRedisKey(key), err)
	}
	return vector, nil
}

// SetEmbedding 缓存嵌入向量，带过期时间
func (r *Redis) SetEmbedding(ctx context.Context, fingerprint string, vector []float64, ttl time.Duration) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("序列化向量失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyEmbeddingVector, fingerprint)
	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入缓存失败 (key=%s): %w", tracing.SafeRedisKey(key), err)
	}
	return nil
}

// GetVocabRegistry 读取缓存的词表记录（JSON编码），未命中返回 ErrNotFound
func (r *Redis) GetVocabRegistry(ctx context.Context, sourceName string) ([]byte, error) {
	key := fmt.Sprintf(constants.KeyVocabRegistry, sourceName)
	return r.Client.Get(ctx, key).Bytes()
}

// SetVocabRegistry 缓存词表记录，带过期时间
func (r *Redis) SetVocabRegistry(ctx context.Context, sourceName string, data []byte, ttl time.Duration) error {
	key := fmt.Sprintf(constants.KeyVocabRegistry, sourceName)
	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入词表缓存失败 (key=%s): %w", tracing.SafeRedisKey(key), err)
	}
	return nil
}

// Close closes the underlying Redis connection
func (r *Redis) Close() error {
	return r.Client.Close()
}
