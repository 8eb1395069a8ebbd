package skills

import "strings"

// Token 文本中的一个词元及其字节偏移
type Token struct {
	Text  string
	Start int // 起始字节偏移（含）
	End   int // 结束字节偏移（不含）
}

// isTokenChar 判断字符是否属于词元。
// "+"、"#" 和 "." 参与词元构成，保证 "c++"、"c#"、"node.js" 不被拆散。
func isTokenChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '+' || r == '#' || r == '.':
		return true
	}
	return false
}

// TokenizeWithOffsets 将文本切分为词元并记录字节偏移，词元首尾的 "." 会被剔除
// （"node.js." 末尾的句号不属于词元本身）。
func TokenizeWithOffsets(text string) []Token {
	var tokens []Token
	start := -1
	for i, r := range text {
		if isTokenChar(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = appendTrimmed(tokens, text, start, i)
			start = -1
		}
	}
	if start >= 0 {
		tokens = appendTrimmed(tokens, text, start, len(text))
	}
	return tokens
}

// appendTrimmed 去掉词元尾部的句号后再追加（保留 ".net" 这类前导点）
func appendTrimmed(tokens []Token, text string, start, end int) []Token {
	raw := text[start:end]
	trimmed := strings.TrimRight(raw, ".")
	if trimmed == "" {
		return tokens
	}
	end = start + len(trimmed)
	return append(tokens, Token{Text: trimmed, Start: start, End: end})
}

// NormalizeKey 将技能名归一化为查表键：小写，去掉空格、点、连字符、
// 下划线和斜杠，保留 "+" 与 "#"。"Node.js"、"NodeJS"、"node js" 都归一为 "nodejs"。
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '\t', '.', '-', '_', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
