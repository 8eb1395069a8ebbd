package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ai-match-go/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbeddingServer 模拟OpenAI兼容的 /embeddings 后端。
// 每条文本返回 [len(text), index] 形式的确定性向量，且故意
// 倒序返回data数组，验证客户端按index字段重组。
func newEmbeddingServer(t *testing.T, requestCount *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requestCount, 1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type entry struct {
			Object    string    `json:"object"`
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]entry, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- { // 倒序返回
			data = append(data, entry{
				Object:    "embedding",
				Embedding: []float64{float64(len(req.Input[i])), float64(i)},
				Index:     i,
			})
		}
		resp := map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func testEmbeddingConfig(baseURL string) config.EmbeddingConfig {
	return config.EmbeddingConfig{
		BaseURL:    baseURL,
		Model:      "test-model",
		Dimensions: 0, // 不传dimensions参数
		BatchSize:  2,
	}
}

// TestEmbedStringsOrderPreserved 结果顺序与输入一致，即使后端乱序返回
func TestEmbedStringsOrderPreserved(t *testing.T) {
	var requests int32
	server := newEmbeddingServer(t, &requests)
	defer server.Close()

	e, err := NewOpenAIEmbedder(testEmbeddingConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	texts := []string{"a", "bb"}
	vectors, err := e.EmbedStrings(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	// 向量首位编码了文本长度，可据此验证顺序
	assert.Equal(t, 1.0, vectors[0][0])
	assert.Equal(t, 2.0, vectors[1][0])
}

// TestEmbedStringsBatchSplitting 超过批大小的输入拆分为多个请求，结果仍按输入顺序
func TestEmbedStringsBatchSplitting(t *testing.T) {
	var requests int32
	server := newEmbeddingServer(t, &requests)
	defer server.Close()

	e, err := NewOpenAIEmbedder(testEmbeddingConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := e.EmbedStrings(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 5)

	assert.Equal(t, int32(3), atomic.LoadInt32(&requests), "批大小为2时5条文本应产生3个请求")
	for i, text := range texts {
		assert.Equal(t, float64(len(text)), vectors[i][0], "第%d条向量应对应第%d条文本", i, i)
	}
}

// TestEmbedStringsEmptyInput 空输入不发起请求
func TestEmbedStringsEmptyInput(t *testing.T) {
	var requests int32
	server := newEmbeddingServer(t, &requests)
	defer server.Close()

	e, err := NewOpenAIEmbedder(testEmbeddingConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	vectors, err := e.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

// TestEmbedStringsServerError 后端报错时透传详细错误
func TestEmbedStringsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"message": "rate limited",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedder(testEmbeddingConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	_, err = e.EmbedStrings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

// TestEmbedStringsCountMismatch 后端返回数量不符时报错而不是静默丢失
func TestEmbedStringsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   []interface{}{}, // 故意返回空
		})
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedder(testEmbeddingConfig(server.URL), zerolog.Nop())
	require.NoError(t, err)

	_, err = e.EmbedStrings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "数量不符")
}

// TestEmbedStringsAuthHeader 配置了APIKey时携带Bearer认证头
func TestEmbedStringsAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "embedding": []float64{1}, "index": 0},
			},
		})
	}))
	defer server.Close()

	cfg := testEmbeddingConfig(server.URL)
	cfg.APIKey = "secret-key"
	e, err := NewOpenAIEmbedder(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = e.EmbedStrings(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

// TestNewOpenAIEmbedderRequiresBaseURL 缺少后端地址时构造失败
func TestNewOpenAIEmbedderRequiresBaseURL(t *testing.T) {
	_, err := NewOpenAIEmbedder(config.EmbeddingConfig{}, zerolog.Nop())
	assert.Error(t, err)
}
