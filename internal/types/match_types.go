package types

// JobPosting 岗位信息，由外部持久化服务以纯数据记录的形式传入
type JobPosting struct {
	// 岗位ID（外部存储的不透明标识符）
	ID string `json:"id"`

	// 岗位标题
	Title string `json:"title"`

	// 岗位描述原始文本
	Description string `json:"description"`

	// 必备技能列表（可选，为空时从描述中推断）
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// ResumeDocument 简历文档，文本已由外部解析服务从PDF/DOCX中提取
type ResumeDocument struct {
	// 简历ID
	ID string `json:"id"`

	// 候选人姓名（可选）
	CandidateName string `json:"candidate_name,omitempty"`

	// 已提取的简历原始文本
	RawText string `json:"raw_text"`
}

// HighlightSpan 简历文本的一个连续片段，标记其是否命中技能
type HighlightSpan struct {
	Text    string `json:"text"`
	IsMatch bool   `json:"is_match"`
}

// MatchResult 单份简历的匹配结果，构造后不可变
type MatchResult struct {
	// 简历ID
	ResumeID string `json:"resume_id"`

	// 候选人姓名
	CandidateName string `json:"candidate_name,omitempty"`

	// 语义相似度 [0,1]
	SemanticScore float64 `json:"semantic_score"`

	// 技能覆盖率 [0,1]
	SkillsOverlap float64 `json:"skills_overlap"`

	// 综合分数 [0,1]
	CompositeScore float64 `json:"composite_score"`

	// 命中的技能
	MatchedSkills []string `json:"matched_skills"`

	// 缺失的技能
	MissingSkills []string `json:"missing_skills"`

	// 岗位与简历共有的非技能词项（技能之外的匹配佐证）
	ContextTerms []string `json:"context_terms,omitempty"`

	// 高亮片段（按简历文本原始顺序）
	HighlightedSpans []HighlightSpan `json:"highlighted_spans"`
}

// SkippedResume 记录单份简历被跳过的原因，整批不因个别失败而中断
type SkippedResume struct {
	ResumeID string `json:"resume_id"`
	Reason   string `json:"reason"`
}

// RankOutcome 一次排序调用的完整输出
type RankOutcome struct {
	// 本次匹配运行的唯一ID
	RunID string `json:"run_id"`

	// 按综合分数降序排列的结果，平分时保持输入顺序
	Results []MatchResult `json:"results"`

	// 被跳过的简历及原因
	Skipped []SkippedResume `json:"skipped,omitempty"`

	// 超时截断标记：true表示结果只包含超时前完成的部分
	Partial bool `json:"partial"`
}
