package skills

import (
	"sort"
	"strings"
)

// RegistryEntry 词表中的一条技能记录
type RegistryEntry struct {
	// 规范技能名
	Name string `json:"name"`

	// 同义写法，匹配后映射回规范名
	Aliases []string `json:"aliases,omitempty"`
}

// Vocabulary 技能词表：规范名集合 + 归一化键到规范名的映射。
// 进程启动时构建一次，之后只读共享，可被并发的匹配调用安全使用。
type Vocabulary struct {
	canonical []string          // 规范名（小写、去重、有序）
	byKey     map[string]string // NormalizeKey(规范名或别名) -> 规范名
	maxWords  int               // 词表中最长短语的词数，限制n-gram扫描窗口
}

// NewVocabulary 从词表记录构建Vocabulary，名称统一小写并去重
func NewVocabulary(entries []RegistryEntry) *Vocabulary {
	v := &Vocabulary{
		byKey:    make(map[string]string),
		maxWords: 1,
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == "" {
			continue
		}
		if !seen[name] {
			seen[name] = true
			v.canonical = append(v.canonical, name)
		}
		v.index(name, name)
		for _, alias := range entry.Aliases {
			v.index(alias, name)
		}
	}
	sort.Strings(v.canonical)
	return v
}

func (v *Vocabulary) index(phrase, canonical string) {
	key := NormalizeKey(phrase)
	if key == "" {
		return
	}
	if _, exists := v.byKey[key]; !exists {
		v.byKey[key] = canonical
	}
	if words := len(strings.Fields(phrase)); words > v.maxWords {
		v.maxWords = words
	}
}

// Canonical 按归一化键查找规范名，容忍常见的复数形式
func (v *Vocabulary) Canonical(phrase string) (string, bool) {
	key := NormalizeKey(phrase)
	if key == "" {
		return "", false
	}
	if canon, ok := v.byKey[key]; ok {
		return canon, true
	}
	// 复数容忍："databases" -> "database"
	if strings.HasSuffix(key, "es") && len(key) > 4 {
		if canon, ok := v.byKey[key[:len(key)-2]]; ok {
			return canon, true
		}
	}
	if strings.HasSuffix(key, "s") && len(key) > 3 {
		if canon, ok := v.byKey[key[:len(key)-1]]; ok {
			return canon, true
		}
	}
	return "", false
}

// CanonicalSkills 返回全部规范技能名（有序副本）
func (v *Vocabulary) CanonicalSkills() []string {
	out := make([]string, len(v.canonical))
	copy(out, v.canonical)
	return out
}

// Size 词表中规范技能的数量
func (v *Vocabulary) Size() int {
	return len(v.canonical)
}

// MaxPhraseWords 词表中最长短语的词数
func (v *Vocabulary) MaxPhraseWords() int {
	return v.maxWords
}

// NormalizeList 清洗调用方提供的技能列表：去空白、小写、别名映射回规范名、
// 按首次出现顺序去重。词表中不存在的技能按小写原样保留。
func (v *Vocabulary) NormalizeList(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range raw {
		t := strings.ToLower(strings.TrimSpace(s))
		if t == "" {
			continue
		}
		if canon, ok := v.Canonical(t); ok {
			t = canon
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
