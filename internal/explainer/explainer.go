// Package explainer 为匹配结果生成可解释信息：命中/缺失技能清单
// 和供前端渲染的高亮片段。本包不缓存任何结果，片段随用随算。
package explainer

import (
	"sort"

	"ai-match-go/internal/skills"
	"ai-match-go/internal/types"
)

// Explanation 单份简历的解释信息
type Explanation struct {
	// 岗位要求且简历具备的技能
	MatchedSkills []string

	// 岗位要求但简历缺失的技能（技能差距）
	MissingSkills []string
}

// Explain 计算技能交集与差集。零技能岗位返回空的差距清单，不是错误。
func Explain(jobSkills, resumeSkills []string) Explanation {
	resumeSet := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		resumeSet[s] = true
	}

	var matched, missing []string
	for _, s := range jobSkills {
		if resumeSet[s] {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)
	return Explanation{MatchedSkills: matched, MissingSkills: missing}
}

// DefaultContextTermLimit 单份简历返回的共有上下文词项上限
const DefaultContextTermLimit = 8

// contextStopwords 上下文词项排除的常见虚词（文本已小写化）
var contextStopwords = map[string]bool{
	"with": true, "this": true, "that": true, "from": true, "have": true,
	"will": true, "your": true, "their": true, "them": true, "then": true,
	"than": true, "were": true, "been": true, "being": true, "over": true,
	"into": true, "such": true, "also": true, "more": true, "most": true,
	"other": true, "each": true, "between": true, "within": true, "while": true,
	"when": true, "where": true, "which": true, "what": true, "these": true,
	"those": true, "should": true, "would": true, "could": true, "must": true,
	"about": true, "after": true, "before": true, "under": true, "during": true,
	"some": true, "very": true, "both": true, "every": true, "years": true,
}

// ContextTerms 找出岗位与简历共有的非技能词项，作为技能清单之外的匹配佐证。
// 输入应为已清洗（小写）的文本。词项按简历中出现频次降序排列，同频按字典序，
// 结果确定可复现。技能词、虚词、短词和纯数字不计入。
func ContextTerms(jobText, resumeText string, skillTerms []string, limit int) []string {
	if jobText == "" || resumeText == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultContextTermLimit
	}

	skillWords := make(map[string]bool)
	for _, s := range skillTerms {
		for _, tok := range skills.TokenizeWithOffsets(s) {
			skillWords[tok.Text] = true
		}
	}

	jobWords := make(map[string]bool)
	for _, tok := range skills.TokenizeWithOffsets(jobText) {
		if eligibleContextTerm(tok.Text, skillWords) {
			jobWords[tok.Text] = true
		}
	}
	if len(jobWords) == 0 {
		return nil
	}

	freq := make(map[string]int)
	for _, tok := range skills.TokenizeWithOffsets(resumeText) {
		if jobWords[tok.Text] {
			freq[tok.Text]++
		}
	}
	if len(freq) == 0 {
		return nil
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(a, b int) bool {
		if freq[terms[a]] != freq[terms[b]] {
			return freq[terms[a]] > freq[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

// eligibleContextTerm 过滤短词、纯数字、虚词和技能自身的词元
func eligibleContextTerm(word string, skillWords map[string]bool) bool {
	if len([]rune(word)) < 4 {
		return false
	}
	if contextStopwords[word] || skillWords[word] {
		return false
	}
	for _, r := range word {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// HighlightSpans 将简历文本切分为连续片段序列，命中技能词元的片段
// 标记为匹配。片段按原文顺序排列，拼接后恢复原文。每次调用重新计算。
func HighlightSpans(resumeText string, vocab *skills.Vocabulary, matchedSkills []string) []types.HighlightSpan {
	if resumeText == "" {
		return nil
	}
	if len(matchedSkills) == 0 {
		return []types.HighlightSpan{{Text: resumeText, IsMatch: false}}
	}

	targets := make(map[string]bool, len(matchedSkills))
	for _, s := range matchedSkills {
		targets[s] = true
	}

	occurrences := skills.FindSkillSpans(resumeText, vocab, targets)
	if len(occurrences) == 0 {
		return []types.HighlightSpan{{Text: resumeText, IsMatch: false}}
	}

	var spans []types.HighlightSpan
	cursor := 0
	for _, occ := range occurrences {
		if occ.Start > cursor {
			spans = append(spans, types.HighlightSpan{Text: resumeText[cursor:occ.Start], IsMatch: false})
		}
		spans = append(spans, types.HighlightSpan{Text: resumeText[occ.Start:occ.End], IsMatch: true})
		cursor = occ.End
	}
	if cursor < len(resumeText) {
		spans = append(spans, types.HighlightSpan{Text: resumeText[cursor:], IsMatch: false})
	}
	return spans
}
