// Package handler 实现HTTP请求处理器
package handler

import (
	"context"
	"errors"
	"math"
	"time"

	"ai-match-go/internal/config"
	"ai-match-go/internal/constants"
	"ai-match-go/internal/matcher"
	"ai-match-go/internal/scorer"
	"ai-match-go/internal/tracing"
	"ai-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// MatchHandler 负责处理岗位与简历的匹配排序请求
type MatchHandler struct {
	cfg    *config.Config
	ranker *matcher.Ranker
	logger zerolog.Logger
}

// NewMatchHandler 创建MatchHandler实例
func NewMatchHandler(cfg *config.Config, ranker *matcher.Ranker, logger zerolog.Logger) *MatchHandler {
	return &MatchHandler{
		cfg:    cfg,
		ranker: ranker,
		logger: logger.With().Str("component", "MatchHandler").Logger(),
	}
}

// matchRequest 匹配请求体。权重、TopK和超时均可按调用覆盖，
// 缺省时使用配置文件中的值。
type matchRequest struct {
	Job     types.JobPosting       `json:"job"`
	Resumes []types.ResumeDocument `json:"resumes"`

	SemanticWeight     *float64 `json:"semantic_weight,omitempty"`
	SkillsWeight       *float64 `json:"skills_weight,omitempty"`
	TopK               int      `json:"top_k,omitempty"`
	EmbeddingTimeoutMS int      `json:"embedding_timeout_ms,omitempty"`
}

// matchResultView 对外展示的单条结果，分数四舍五入到固定精度。
// 内部计算和排序始终使用全精度，只在响应序列化时做展示舍入。
type matchResultView struct {
	ResumeID         string                `json:"resume_id"`
	CandidateName    string                `json:"candidate_name,omitempty"`
	SemanticScore    float64               `json:"semantic_score"`
	SkillsOverlap    float64               `json:"skills_overlap"`
	CompositeScore   float64               `json:"composite_score"`
	MatchedSkills    []string              `json:"matched_skills"`
	MissingSkills    []string              `json:"missing_skills"`
	ContextTerms     []string              `json:"context_terms,omitempty"`
	HighlightedSpans []types.HighlightSpan `json:"highlighted_spans,omitempty"`
}

type matchResponse struct {
	RunID   string                `json:"run_id"`
	Results []matchResultView     `json:"results"`
	Skipped []types.SkippedResume `json:"skipped,omitempty"`
	Partial bool                  `json:"partial"`
}

// HandleMatch 处理匹配排序请求。
// POST /api/v1/match
func (h *MatchHandler) HandleMatch(ctx context.Context, c *app.RequestContext) {
	span := trace.SpanFromContext(ctx)

	var req matchRequest
	if err := c.BindAndValidate(&req); err != nil {
		tracing.RecordHTTPError(span, err, consts.StatusBadRequest)
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体解析失败: " + err.Error()})
		return
	}

	if req.Job.Description == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "岗位描述不能为空"})
		return
	}

	opts := h.buildOptions(req)

	h.logger.Info().
		Str("job_id", req.Job.ID).
		Int("resumes", len(req.Resumes)).
		Str("job_title", tracing.SafeAttributeValue("job_title", req.Job.Title, tracing.DefaultMaxLength)).
		Msg("收到匹配请求")

	outcome, err := h.ranker.Rank(ctx, req.Job, req.Resumes, opts)
	if err != nil {
		status := h.statusFor(err)
		tracing.RecordHTTPError(span, err, status)
		h.logger.Error().Err(err).Str("job_id", req.Job.ID).Msg("匹配失败")
		c.JSON(status, map[string]string{"error": err.Error()})
		return
	}

	c.JSON(consts.StatusOK, h.buildResponse(outcome))
}

// HandleHealth 存活检查。
// GET /api/v1/health
func (h *MatchHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady 就绪检查：向嵌入后端发送探测请求确认可服务。
// GET /api/v1/ready
func (h *MatchHandler) HandleReady(ctx context.Context, c *app.RequestContext) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.ranker.Initialize(probeCtx); err != nil {
		c.JSON(consts.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(consts.StatusOK, map[string]string{"status": "ready"})
}

// buildOptions 合并按调用覆盖项与配置默认值。
// 权重以配置值为基底，请求中显式给出的值（包括零）原样覆盖，
// 合法性交由引擎校验。
func (h *MatchHandler) buildOptions(req matchRequest) matcher.Options {
	weights := scorer.Weights{
		Semantic: h.cfg.Matching.SemanticWeight,
		Skills:   h.cfg.Matching.SkillsWeight,
	}
	if req.SemanticWeight != nil {
		weights.Semantic = *req.SemanticWeight
	}
	if req.SkillsWeight != nil {
		weights.Skills = *req.SkillsWeight
	}

	opts := matcher.Options{
		Weights:          &weights,
		TopK:             h.cfg.Matching.TopK,
		EmbeddingTimeout: time.Duration(h.cfg.Matching.EmbeddingTimeoutMS) * time.Millisecond,
	}
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}
	if req.EmbeddingTimeoutMS > 0 {
		opts.EmbeddingTimeout = time.Duration(req.EmbeddingTimeoutMS) * time.Millisecond
	}
	return opts
}

// statusFor 将引擎错误映射为HTTP状态码
func (h *MatchHandler) statusFor(err error) int {
	switch {
	case errors.Is(err, scorer.ErrInvalidWeights), errors.Is(err, matcher.ErrEmptyJobText):
		return consts.StatusBadRequest
	case errors.Is(err, matcher.ErrEmbeddingUnavailable):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

// buildResponse 构造响应体，分数做展示舍入
func (h *MatchHandler) buildResponse(outcome *types.RankOutcome) matchResponse {
	views := make([]matchResultView, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		views = append(views, matchResultView{
			ResumeID:         r.ResumeID,
			CandidateName:    r.CandidateName,
			SemanticScore:    roundScore(r.SemanticScore),
			SkillsOverlap:    roundScore(r.SkillsOverlap),
			CompositeScore:   roundScore(r.CompositeScore),
			MatchedSkills:    r.MatchedSkills,
			MissingSkills:    r.MissingSkills,
			ContextTerms:     r.ContextTerms,
			HighlightedSpans: r.HighlightedSpans,
		})
	}
	return matchResponse{
		RunID:   outcome.RunID,
		Results: views,
		Skipped: outcome.Skipped,
		Partial: outcome.Partial,
	}
}

// roundScore 展示用的分数舍入
func roundScore(v float64) float64 {
	factor := math.Pow10(constants.ScoreDisplayPrecision)
	return math.Round(v*factor) / factor
}
