package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"ai-match-go/internal/api/handler"
	"ai-match-go/internal/api/router"
	"ai-match-go/internal/config"
	"ai-match-go/internal/matcher"
	"ai-match-go/internal/skills"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder 返回确定性向量的内存嵌入器
type stubEmbedder struct{}

func (s *stubEmbedder) GetDimensions() int { return 3 }

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		if strings.Contains(text, "broken") {
			return nil, fmt.Errorf("后端不可达")
		}
		vec := []float64{0.2, 0.8, 0.1}
		if strings.Contains(text, "python") {
			vec = []float64{1, 0, 0}
		}
		out = append(out, vec)
	}
	return out, nil
}

func newTestServer(t *testing.T, apiKey string) *server.Hertz {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Server.APIKey = apiKey

	vocab := skills.NewVocabulary([]skills.RegistryEntry{
		{Name: "python"},
		{Name: "sql"},
	})
	extractor := skills.NewExtractor(skills.StrategyVocabulary, vocab)
	ranker := matcher.NewRanker(&stubEmbedder{}, vocab, extractor, 2, zerolog.Nop())
	matchHandler := handler.NewMatchHandler(cfg, ranker, zerolog.Nop())

	h := server.Default(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, cfg, matchHandler)
	return h
}

func performJSON(h *server.Hertz, method, path string, payload interface{}, headers ...ut.Header) *ut.ResponseRecorder {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	return ut.PerformRequest(h.Engine, method, path,
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)}, headers...)
}

// TestHandleMatchOK 正常匹配请求返回排序结果，分数为展示精度
func TestHandleMatchOK(t *testing.T) {
	h := newTestServer(t, "")

	payload := map[string]interface{}{
		"job": map[string]interface{}{
			"id":              "job-1",
			"description":     "python engineer wanted",
			"required_skills": []string{"python", "sql"},
		},
		"resumes": []map[string]interface{}{
			{"id": "r1", "raw_text": "python developer"},
			{"id": "r2", "raw_text": "project manager"},
		},
	}

	w := performJSON(h, "POST", "/api/v1/match", payload)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var got struct {
		RunID   string `json:"run_id"`
		Results []struct {
			ResumeID       string  `json:"resume_id"`
			CompositeScore float64 `json:"composite_score"`
			MatchedSkills  []string
		} `json:"results"`
		Partial bool `json:"partial"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &got))

	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "r1", got.Results[0].ResumeID)
	assert.False(t, got.Partial)

	// 分数应已舍入到3位小数
	for _, r := range got.Results {
		rounded := float64(int(r.CompositeScore*1000+0.5)) / 1000
		assert.InDelta(t, rounded, r.CompositeScore, 1e-9)
	}
}

// TestHandleMatchEmptyJob 岗位描述为空返回400
func TestHandleMatchEmptyJob(t *testing.T) {
	h := newTestServer(t, "")

	payload := map[string]interface{}{
		"job":     map[string]interface{}{"id": "job-1", "description": ""},
		"resumes": []map[string]interface{}{},
	}

	w := performJSON(h, "POST", "/api/v1/match", payload)
	assert.Equal(t, 400, w.Result().StatusCode())
}

// TestHandleMatchInvalidWeights 非法权重返回400
func TestHandleMatchInvalidWeights(t *testing.T) {
	h := newTestServer(t, "")

	negative := -0.5
	payload := map[string]interface{}{
		"job": map[string]interface{}{
			"id":          "job-1",
			"description": "python engineer",
		},
		"resumes":         []map[string]interface{}{{"id": "r1", "raw_text": "python"}},
		"semantic_weight": negative,
	}

	w := performJSON(h, "POST", "/api/v1/match", payload)
	assert.Equal(t, 400, w.Result().StatusCode())
}

// TestHandleMatchExplicitZeroWeights 请求中显式给出的双零权重返回400，
// 不得退回配置默认值继续排序
func TestHandleMatchExplicitZeroWeights(t *testing.T) {
	h := newTestServer(t, "")

	payload := map[string]interface{}{
		"job": map[string]interface{}{
			"id":          "job-1",
			"description": "python engineer",
		},
		"resumes":         []map[string]interface{}{{"id": "r1", "raw_text": "python"}},
		"semantic_weight": 0,
		"skills_weight":   0,
	}

	w := performJSON(h, "POST", "/api/v1/match", payload)
	assert.Equal(t, 400, w.Result().StatusCode())
}

// TestHandleMatchEmbeddingDown 岗位嵌入失败返回503
func TestHandleMatchEmbeddingDown(t *testing.T) {
	h := newTestServer(t, "")

	payload := map[string]interface{}{
		"job": map[string]interface{}{
			"id":          "job-1",
			"description": "broken backend trigger",
		},
		"resumes": []map[string]interface{}{{"id": "r1", "raw_text": "python"}},
	}

	w := performJSON(h, "POST", "/api/v1/match", payload)
	assert.Equal(t, 503, w.Result().StatusCode())
}

// TestHandleMatchAPIKey 配置API密钥后，缺少或错误的密钥应被拒绝
func TestHandleMatchAPIKey(t *testing.T) {
	h := newTestServer(t, "secret")

	payload := map[string]interface{}{
		"job":     map[string]interface{}{"id": "job-1", "description": "python engineer"},
		"resumes": []map[string]interface{}{},
	}

	// 无密钥
	w := performJSON(h, "POST", "/api/v1/match", payload)
	assert.Equal(t, 401, w.Result().StatusCode())

	// 错误密钥
	w = performJSON(h, "POST", "/api/v1/match", payload, ut.Header{Key: "X-API-Key", Value: "wrong"})
	assert.Equal(t, 401, w.Result().StatusCode())

	// 正确密钥
	w = performJSON(h, "POST", "/api/v1/match", payload, ut.Header{Key: "X-API-Key", Value: "secret"})
	assert.Equal(t, 200, w.Result().StatusCode())
}

// TestHandleHealth 健康检查无需鉴权
func TestHandleHealth(t *testing.T) {
	h := newTestServer(t, "secret")

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
}
