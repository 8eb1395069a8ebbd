package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-match-go/internal/config"
	"ai-match-go/internal/constants"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
)

// OpenAIEmbedder 通过OpenAI兼容的 /embeddings 接口获取文本向量，
// 实现 embedding.Embedder 接口。兼容 text-embeddings-inference、
// DashScope 等提供该协议的后端。
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	batchSize  int // 单次HTTP请求的最大文本数，超出时内部拆分
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewOpenAIEmbedder 创建嵌入客户端
func NewOpenAIEmbedder(cfg config.EmbeddingConfig, logger zerolog.Logger) (*OpenAIEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("嵌入服务地址不能为空")
	}

	model := cfg.Model
	if model == "" {
		model = "all-MiniLM-L6-v2" // Fallback default
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = constants.DefaultEmbedBatchSize
	}
	requestTimeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}

	return &OpenAIEmbedder{
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: cfg.Dimensions,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    cfg.BaseURL,
		logger:     logger.With().Str("component", "OpenAIEmbedder").Logger(),
	}, nil
}

// GetDimensions 返回嵌入器配置的维度
func (e *OpenAIEmbedder) GetDimensions() int {
	return e.dimensions
}

// openAIEmbeddingRequest OpenAI兼容的Embedding请求结构
type openAIEmbeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// openAIEmbeddingResponse OpenAI兼容的Embedding响应结构
type openAIEmbeddingResponse struct {
	Object string             `json:"object"`
	Data   []openAIDataEntry  `json:"data"`
	Model  string             `json:"model"`
	Usage  openAIUsage        `json:"usage"`
	Error  *openAIErrorDetail `json:"error,omitempty"`
}

type openAIDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type openAIUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// openAIErrorDetail API级别错误（可能伴随 200 OK 返回）
type openAIErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// EmbedStrings 将文本转换为向量, 实现 cloudwego/eino embedding.Embedder 接口。
// 超过batchSize的输入在内部拆分为多个请求，结果按输入顺序重组，
// 拆分与否不改变任何单条文本的向量。
func (e *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := e.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(ctx, texts[start:end], effectiveModel)
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	e.logger.Debug().
		Int("texts", len(texts)).
		Str("model", effectiveModel).
		Int("dimensions", firstEmbeddingDim(out)).
		Msg("嵌入完成")
	return out, nil
}

// embedBatch 发送单个HTTP请求
func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string, model string) ([][]float64, error) {
	reqBody := openAIEmbeddingRequest{
		Input: texts,
		Model: model,
	}
	if e.dimensions > 0 {
		reqBody.Dimensions = e.dimensions
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detailedErr := fmt.Errorf("嵌入API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
		var errWrapper struct {
			Error *openAIErrorDetail `json:"error"`
		}
		if json.Unmarshal(body, &errWrapper) == nil && errWrapper.Error != nil && errWrapper.Error.Message != "" {
			detailedErr = fmt.Errorf("嵌入API调用失败, 状态码: %d, 类型: %s, 错误: %s", resp.StatusCode, errWrapper.Error.Type, errWrapper.Error.Message)
		}
		e.logger.Error().Err(detailedErr).Msg("嵌入后端返回错误")
		return nil, detailedErr
	}

	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析响应JSON失败: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("嵌入API返回错误: 类型=%s, 消息=%s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("嵌入结果数量不符: 期望%d, 实际%d", len(texts), len(parsed.Data))
	}

	// 按index字段重组，不依赖后端的返回顺序
	vectors := make([][]float64, len(texts))
	for _, entry := range parsed.Data {
		if entry.Index < 0 || entry.Index >= len(texts) {
			return nil, fmt.Errorf("嵌入结果index越界: %d", entry.Index)
		}
		vectors[entry.Index] = entry.Embedding
	}
	for i, vec := range vectors {
		if vec == nil {
			return nil, fmt.Errorf("嵌入结果缺少第%d条文本的向量", i)
		}
	}
	return vectors, nil
}

// firstEmbeddingDim 安全获取第一个向量的维度，用于日志
func firstEmbeddingDim(embeddings [][]float64) int {
	if len(embeddings) > 0 {
		return len(embeddings[0])
	}
	return 0
}
