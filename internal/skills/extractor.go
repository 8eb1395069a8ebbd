package skills

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"ai-match-go/internal/textproc"
)

// Extractor 技能提取策略接口。词表匹配与模型增强识别是
// 可互换的策略，由配置选择，不做运行时类型判断。
type Extractor interface {
	// Extract 从文本中提取技能集合，返回有序的规范技能名。
	// 空文本返回空集，永不报错。
	Extract(ctx context.Context, text string) []string
}

// 策略名称
const (
	StrategyVocabulary = "vocabulary" // 仅词表匹配
	StrategyAugmented  = "augmented"  // 词表匹配 + 启发式识别
)

// NewExtractor 按策略名构建提取器。未知策略退化为纯词表匹配
// （词表之外的识别器不可用时的优雅降级）。
func NewExtractor(strategy string, vocab *Vocabulary) Extractor {
	switch strategy {
	case StrategyAugmented:
		return &AugmentedExtractor{base: &VocabularyExtractor{Vocab: vocab}}
	case StrategyVocabulary:
		return &VocabularyExtractor{Vocab: vocab}
	default:
		return &VocabularyExtractor{Vocab: vocab}
	}
}

// VocabularyExtractor 纯词表匹配：对归一化文本做n-gram扫描，
// 命中的短语映射回规范技能名。
type VocabularyExtractor struct {
	Vocab *Vocabulary
}

// Extract 实现 Extractor 接口
func (e *VocabularyExtractor) Extract(ctx context.Context, text string) []string {
	found := e.matchSet(text)
	return sortedKeys(found)
}

// matchSet 返回文本中命中的规范技能集合
func (e *VocabularyExtractor) matchSet(text string) map[string]bool {
	found := make(map[string]bool)
	if strings.TrimSpace(text) == "" || e.Vocab == nil || e.Vocab.Size() == 0 {
		return found
	}

	// 与 §4.1 共享同一归一化（Normalize幂等，已清洗的输入不会二次变形）
	cleaned := textproc.Normalize(text)
	tokens := TokenizeWithOffsets(cleaned)

	maxGram := e.Vocab.MaxPhraseWords()
	if maxGram > 4 {
		maxGram = 4 // 词表短语超过4词的极少，限制扫描窗口
	}

	for i := range tokens {
		for n := 1; n <= maxGram && i+n <= len(tokens); n++ {
			phrase := joinTokens(tokens[i : i+n])
			if canon, ok := e.Vocab.Canonical(phrase); ok {
				found[canon] = true
			}
		}
	}
	return found
}

// 启发式识别规则：全大写缩写词 与 驼峰式技术名词
var (
	reAcronym   = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,5}\b`)
	reCamelCase = regexp.MustCompile(`\b[A-Z][a-z]+(?:[A-Z][a-z0-9]+)+\b`)
)

// acronymStoplist 常见的非技能大写词，避免误报
var acronymStoplist = map[string]bool{
	"A": true, "I": true, "AM": true, "PM": true, "CV": true, "USA": true,
	"UK": true, "EU": true, "BS": true, "BA": true, "MS": true, "MBA": true,
	"PHD": true, "GPA": true, "LLC": true, "INC": true, "CEO": true, "CTO": true,
	"HR": true, "OK": true, "NO": true, "TO": true, "IN": true, "ON": true,
	"AT": true, "OF": true, "OR": true, "AND": true, "THE": true, "FOR": true,
}

// AugmentedExtractor 词表匹配之上叠加启发式识别：原始文本中的
// 大写缩写词（"AWS"）和驼峰式名词（"PyTorch"）即使不在词表中也会被
// 捕获。尽力而为：漏报可接受，误报通过停用词表控制。
type AugmentedExtractor struct {
	base *VocabularyExtractor
}

// Extract 实现 Extractor 接口
func (e *AugmentedExtractor) Extract(ctx context.Context, text string) []string {
	found := e.base.matchSet(text)
	if strings.TrimSpace(text) == "" {
		return sortedKeys(found)
	}

	// 启发式识别需要大小写信息，作用于原始文本
	for _, m := range reAcronym.FindAllString(text, -1) {
		if acronymStoplist[m] {
			continue
		}
		skill := strings.ToLower(m)
		if canon, ok := e.base.Vocab.Canonical(skill); ok {
			found[canon] = true
		} else {
			found[skill] = true
		}
	}
	for _, m := range reCamelCase.FindAllString(text, -1) {
		skill := strings.ToLower(m)
		if canon, ok := e.base.Vocab.Canonical(skill); ok {
			found[canon] = true
		} else {
			found[skill] = true
		}
	}
	return sortedKeys(found)
}

// SkillSpan 文本中一次技能命中的位置
type SkillSpan struct {
	Skill string // 规范技能名
	Start int    // 起始字节偏移（含）
	End   int    // 结束字节偏移（不含）
}

// FindSkillSpans 在文本中定位目标技能集合的所有出现位置，
// 返回按起始偏移排序、互不重叠的span（优先匹配更长的短语）。
func FindSkillSpans(text string, vocab *Vocabulary, targets map[string]bool) []SkillSpan {
	if strings.TrimSpace(text) == "" || len(targets) == 0 {
		return nil
	}

	tokens := TokenizeWithOffsets(text)
	maxGram := 1
	if vocab != nil {
		maxGram = vocab.MaxPhraseWords()
		if maxGram > 4 {
			maxGram = 4
		}
	}

	var spans []SkillSpan
	i := 0
	for i < len(tokens) {
		matched := false
		// 从最长的n-gram开始尝试，保证 "machine learning" 不被拆成两个词
		for n := maxGram; n >= 1 && !matched; n-- {
			if i+n > len(tokens) {
				continue
			}
			phrase := joinTokens(tokens[i : i+n])
			canon := canonicalOrSelf(vocab, phrase)
			if targets[canon] {
				spans = append(spans, SkillSpan{
					Skill: canon,
					Start: tokens[i].Start,
					End:   tokens[i+n-1].End,
				})
				i += n
				matched = true
			}
		}
		if !matched {
			i++
		}
	}
	return spans
}

// canonicalOrSelf 词表命中时返回规范名，否则返回归一化小写短语本身
// （覆盖启发式提取出的词表外技能）
func canonicalOrSelf(vocab *Vocabulary, phrase string) string {
	if vocab != nil {
		if canon, ok := vocab.Canonical(phrase); ok {
			return canon
		}
	}
	return strings.ToLower(phrase)
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
