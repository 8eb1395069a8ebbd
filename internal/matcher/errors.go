package matcher

import (
	"errors"
	"fmt"
)

// 定义基础错误类型。
// 维度漂移 (scorer.ErrDimensionMismatch) 和非法权重 (scorer.ErrInvalidWeights)
// 由 scorer 包定义，这里只补充编排层自身的错误。
var (
	// ErrEmbeddingUnavailable 嵌入后端不可达或未加载。
	// 岗位文本嵌入失败时整个排序调用终止；单份简历嵌入失败时仅跳过该简历。
	ErrEmbeddingUnavailable = errors.New("嵌入服务不可用")

	// ErrEmptyJobText 岗位描述清洗后为空，无法计算语义相似度
	ErrEmptyJobText = errors.New("岗位描述为空")
)

// MatchError 包含详细上下文的匹配错误
type MatchError struct {
	ResumeID string // 关联的简历ID，岗位级错误时为空
	Op       string // 出错的操作
	BaseErr  error
	Detail   string
}

func (e *MatchError) Error() string {
	switch {
	case e.ResumeID != "" && e.Detail != "":
		return fmt.Sprintf("%s (操作:%s, 简历:%s): %s", e.BaseErr, e.Op, e.ResumeID, e.Detail)
	case e.ResumeID != "":
		return fmt.Sprintf("%s (操作:%s, 简历:%s)", e.BaseErr, e.Op, e.ResumeID)
	case e.Detail != "":
		return fmt.Sprintf("%s (操作:%s): %s", e.BaseErr, e.Op, e.Detail)
	default:
		return fmt.Sprintf("%s (操作:%s)", e.BaseErr, e.Op)
	}
}

func (e *MatchError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *MatchError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewJobEmbeddingError 岗位文本嵌入失败（终止整个排序调用）
func NewJobEmbeddingError(detail string) error {
	return &MatchError{
		Op:      "embed_job",
		BaseErr: ErrEmbeddingUnavailable,
		Detail:  detail,
	}
}

// NewResumeEmbeddingError 单份简历嵌入失败（该简历被跳过）
func NewResumeEmbeddingError(resumeID, detail string) error {
	return &MatchError{
		ResumeID: resumeID,
		Op:       "embed_resume",
		BaseErr:  ErrEmbeddingUnavailable,
		Detail:   detail,
	}
}
