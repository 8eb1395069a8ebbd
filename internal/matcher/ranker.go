// Package matcher 实现排序编排器：驱动 清洗 → 嵌入 → 打分 → 解释 → 排序
// 的完整流程。编排器无跨调用共享可变状态，每次Rank调用相互独立。
package matcher

import (
	"context"
	"sort"
	"time"

	"ai-match-go/internal/constants"
	"ai-match-go/internal/explainer"
	"ai-match-go/internal/parser"
	"ai-match-go/internal/scorer"
	"ai-match-go/internal/skills"
	"ai-match-go/internal/textproc"
	"ai-match-go/internal/tracing"
	"ai-match-go/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// 为排序流程定义专用tracer
var rankerTracer = otel.Tracer("ai-match-go/matcher")

// Options 单次排序调用的参数。每次调用显式传入，没有全局配置单例。
type Options struct {
	// 打分权重。nil 时使用默认权重；显式传入的值（包括双零）
	// 原样进入校验，不会被默认值顶替
	Weights *scorer.Weights

	// 返回的最大结果数，<=0 时使用默认值
	TopK int

	// 嵌入阶段的总超时。到期时返回已完成的部分结果并置Partial标记，
	// 不丢弃已有工作。<=0 时使用默认值。
	EmbeddingTimeout time.Duration
}

// withDefaults 填充未设置的选项
func (o Options) withDefaults() Options {
	if o.Weights == nil {
		w := scorer.DefaultWeights()
		o.Weights = &w
	}
	if o.TopK <= 0 {
		o.TopK = constants.DefaultTopK
	}
	if o.EmbeddingTimeout <= 0 {
		o.EmbeddingTimeout = constants.DefaultEmbeddingTimeout
	}
	return o
}

// Ranker 排序编排器。嵌入器和技能词表在构造时注入（进程启动时加载一次，
// 之后只读共享），可被并发的排序调用安全使用。
type Ranker struct {
	embedder    parser.TextEmbedder
	vocab       *skills.Vocabulary
	extractor   skills.Extractor
	concurrency int // 简历并行嵌入的上限，按嵌入后端容量设定
	logger      zerolog.Logger
}

// NewRanker 创建排序编排器
func NewRanker(embedder parser.TextEmbedder, vocab *skills.Vocabulary, extractor skills.Extractor, concurrency int, logger zerolog.Logger) *Ranker {
	if concurrency <= 0 {
		concurrency = constants.DefaultEmbedConcurrency
	}
	return &Ranker{
		embedder:    embedder,
		vocab:       vocab,
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "Ranker").Logger(),
	}
}

// Initialize 预热：向嵌入后端发送一次探测请求，确认模型已加载。
// 由宿主进程在开始服务流量前调用一次，冷启动加载不属于引擎自身职责。
func (r *Ranker) Initialize(ctx context.Context) error {
	vectors, err := r.embedder.EmbedStrings(ctx, []string{"warmup probe"})
	if err != nil {
		return NewJobEmbeddingError("预热探测失败: " + err.Error())
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return NewJobEmbeddingError("预热探测返回空向量")
	}
	r.logger.Info().Int("dimensions", len(vectors[0])).Msg("嵌入后端预热完成")
	return nil
}

// resumeComputation 单份简历在流水线中的中间结果，按输入下标存放
type resumeComputation struct {
	vector    []float64
	skillSet  []string
	cleaned   string
	skipped   bool
	skipCause string
}

// Rank 对一个岗位和一批简历排序，返回按综合分数降序的结果
// （平分时先出现在输入中的简历排前）。
//
// 错误语义：
//   - 权重非法时在任何计算前返回 scorer.ErrInvalidWeights；
//   - 岗位文本嵌入失败返回 ErrEmbeddingUnavailable（无法排序任何内容）；
//   - 单份简历失败只记入 Skipped，整批继续；
//   - 向量维度不一致说明模型版本漂移，返回 scorer.ErrDimensionMismatch 终止调用。
func (r *Ranker) Rank(ctx context.Context, job types.JobPosting, resumes []types.ResumeDocument, opts Options) (*types.RankOutcome, error) {
	opts = opts.withDefaults()

	ctx, span := rankerTracer.Start(ctx, "Ranker.Rank")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.Int("resumes.count", len(resumes)),
		attribute.Int("top_k", opts.TopK),
	)

	// 1. 在任何计算开始前校验权重
	if err := opts.Weights.Validate(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	outcome := &types.RankOutcome{
		RunID:   uuid.NewString(),
		Results: []types.MatchResult{},
	}

	// 2. 清洗岗位文本并确定岗位技能集
	jobText := textproc.Normalize(job.Description)
	if jobText == "" {
		tracing.RecordError(span, ErrEmptyJobText, tracing.ErrorTypeValidation)
		return nil, &MatchError{Op: "normalize_job", BaseErr: ErrEmptyJobText}
	}

	jobSkills := r.jobSkillSet(ctx, job, jobText)

	// 3. 嵌入阶段共享一个总超时
	embedCtx, cancel := context.WithTimeout(ctx, opts.EmbeddingTimeout)
	defer cancel()

	// 4. 岗位文本嵌入失败是唯一的致命路径
	jobVectors, err := r.embedder.EmbedStrings(embedCtx, []string{jobText})
	if err != nil {
		wrapped := NewJobEmbeddingError(err.Error())
		tracing.RecordError(span, wrapped, tracing.ErrorTypeExternal)
		return nil, wrapped
	}
	jobVector := jobVectors[0]

	if len(resumes) == 0 {
		return outcome, nil
	}

	// 5. 简历嵌入相互独立，可并行；按输入下标重组，不依赖完成顺序
	computations := r.embedResumes(embedCtx, resumes)

	// 6. 打分与解释（纯内存计算）
	for i, comp := range computations {
		if comp.skipped {
			outcome.Skipped = append(outcome.Skipped, types.SkippedResume{
				ResumeID: resumes[i].ID,
				Reason:   comp.skipCause,
			})
			continue
		}

		semantic, err := scorer.CosineSimilarity(jobVector, comp.vector)
		if err != nil {
			// 维度漂移不可静默容忍，终止整个调用
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			return nil, err
		}

		matched := intersectCount(jobSkills, comp.skillSet)
		overlap := scorer.SkillsOverlap(matched, len(jobSkills))

		composite, err := scorer.Composite(semantic, overlap, *opts.Weights)
		if err != nil {
			return nil, err // 权重已前置校验，不应到达
		}

		expl := explainer.Explain(jobSkills, comp.skillSet)
		spans := explainer.HighlightSpans(comp.cleaned, r.vocab, expl.MatchedSkills)

		// 技能之外的共有词项，供前端展示匹配佐证
		skillTerms := append(append([]string{}, jobSkills...), comp.skillSet...)
		ctxTerms := explainer.ContextTerms(jobText, comp.cleaned, skillTerms, explainer.DefaultContextTermLimit)

		outcome.Results = append(outcome.Results, types.MatchResult{
			ResumeID:         resumes[i].ID,
			CandidateName:    resumes[i].CandidateName,
			SemanticScore:    semantic,
			SkillsOverlap:    overlap,
			CompositeScore:   composite,
			MatchedSkills:    expl.MatchedSkills,
			MissingSkills:    expl.MissingSkills,
			ContextTerms:     ctxTerms,
			HighlightedSpans: spans,
		})
	}

	// 7. 超时截断：已完成的结果保留，未完成的记入Skipped并置Partial标记
	if embedCtx.Err() != nil {
		outcome.Partial = true
		tracing.RecordErrorWithInfo(span, embedCtx.Err(), tracing.ErrorTypeTimeout,
			attribute.Int("resumes.ranked", len(outcome.Results)),
			attribute.Int("resumes.skipped", len(outcome.Skipped)),
		)
	}

	// 8. 全量稳定排序后截断TopK。SliceStable保证平分时保持输入顺序
	sort.SliceStable(outcome.Results, func(a, b int) bool {
		return outcome.Results[a].CompositeScore > outcome.Results[b].CompositeScore
	})
	if len(outcome.Results) > opts.TopK {
		outcome.Results = outcome.Results[:opts.TopK]
	}

	r.logger.Info().
		Str("run_id", outcome.RunID).
		Str("job_id", job.ID).
		Int("ranked", len(outcome.Results)).
		Int("skipped", len(outcome.Skipped)).
		Bool("partial", outcome.Partial).
		Msg("排序完成")
	return outcome, nil
}

// jobSkillSet 确定岗位的技能集合：调用方显式提供时做规范化清洗，
// 否则从岗位描述中推断（自洽回退）。
func (r *Ranker) jobSkillSet(ctx context.Context, job types.JobPosting, jobText string) []string {
	if len(job.RequiredSkills) > 0 {
		return r.vocab.NormalizeList(job.RequiredSkills)
	}
	return r.extractor.Extract(ctx, jobText)
}

// embedResumes 并行清洗、提取技能并嵌入每份简历，
// 并发度受限于嵌入后端容量，结果按输入下标写回。
func (r *Ranker) embedResumes(ctx context.Context, resumes []types.ResumeDocument) []resumeComputation {
	computations := make([]resumeComputation, len(resumes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range resumes {
		g.Go(func() error {
			comp := &computations[i]

			// 超时后不再开始新的嵌入，直接记为跳过
			if gctx.Err() != nil {
				comp.skipped = true
				comp.skipCause = "嵌入超时: " + gctx.Err().Error()
				return nil
			}

			comp.cleaned = textproc.Normalize(resumes[i].RawText)
			if comp.cleaned == "" {
				comp.skipped = true
				comp.skipCause = "简历文本为空"
				return nil
			}
			comp.skillSet = r.extractor.Extract(gctx, comp.cleaned)

			vectors, err := r.embedder.EmbedStrings(gctx, []string{comp.cleaned})
			if err != nil {
				// 单份简历失败不中断整批
				wrapped := NewResumeEmbeddingError(resumes[i].ID, err.Error())
				r.logger.Warn().Err(wrapped).
					Str("resume_id", resumes[i].ID).
					Str("resume_excerpt", tracing.SafeResumeContent(comp.cleaned)).
					Msg("简历嵌入失败，跳过")
				comp.skipped = true
				comp.skipCause = wrapped.Error()
				return nil
			}
			comp.vector = vectors[0]
			return nil
		})
	}
	// 工作协程从不返回错误，Wait只用作汇合点
	_ = g.Wait()
	return computations
}

// intersectCount 两个技能集合的交集大小
func intersectCount(jobSkills, resumeSkills []string) int {
	set := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		set[s] = true
	}
	n := 0
	for _, s := range jobSkills {
		if set[s] {
			n++
		}
	}
	return n
}
