package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeEmptyInput 空输入和纯空白输入都应返回空字符串
func TestNormalizeEmptyInput(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \n\t  \n"))
}

// TestNormalizeLowercase 输出应全部小写
func TestNormalizeLowercase(t *testing.T) {
	got := Normalize("Senior Python Developer")
	assert.Equal(t, "senior python developer", got)
}

// TestNormalizeWhitespaceCollapse 连续空白折叠为单个空格，行首尾空白去除
func TestNormalizeWhitespaceCollapse(t *testing.T) {
	got := Normalize("python    sql\t\tgo")
	assert.Equal(t, "python sql go", got)

	got = Normalize("  line one  \n  line two  ")
	assert.Equal(t, "line one\nline two", got)
}

// TestNormalizeDehyphenation 跨行断词的连字符应被移除并拼合
func TestNormalizeDehyphenation(t *testing.T) {
	got := Normalize("experienced in pro-\ngramming")
	assert.Contains(t, got, "programming")
	assert.NotContains(t, got, "pro- gramming")
}

// TestNormalizeKeepsInWordHyphen 词内连字符（非换行处）应保留
func TestNormalizeKeepsInWordHyphen(t *testing.T) {
	got := Normalize("state-of-the-art systems")
	assert.Contains(t, got, "state-of-the-art")
}

// TestNormalizeStripsMarkdown Markdown结构应被剥除，正文保留
func TestNormalizeStripsMarkdown(t *testing.T) {
	input := "# Skills\n\n- **Python** and [SQL](https://example.com)\n* Go\n1. Kubernetes"
	got := Normalize(input)

	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "](")
	assert.Contains(t, got, "skills")
	assert.Contains(t, got, "python")
	assert.Contains(t, got, "sql")
	assert.Contains(t, got, "go")
	assert.Contains(t, got, "kubernetes")
}

// TestNormalizeBulletVariants 常见项目符号均应剥除
func TestNormalizeBulletVariants(t *testing.T) {
	input := "- item one\n* item two\n+ item three\n• item four"
	got := Normalize(input)
	assert.NotContains(t, got, "-")
	assert.NotContains(t, got, "*")
	assert.NotContains(t, got, "•")
	assert.Contains(t, got, "item one")
	assert.Contains(t, got, "item four")
}

// TestNormalizePreservesTechTokens 技术词汇中的符号必须存活
func TestNormalizePreservesTechTokens(t *testing.T) {
	got := Normalize("Proficient in C++ and .NET development")
	assert.Contains(t, got, "c++")
	assert.Contains(t, got, ".net")
}

// TestNormalizeIdempotent 对已清洗文本再次清洗应得到相同结果
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"# Skills\n- **Python**\n- - nested bullet\n* C++ and .NET",
		"plain text already clean",
		"1. first\n2. second\n\n\n3. third",
		"Mixed   WHITESPACE\t\tand [links](http://x.y)",
		"- - - - - - item",
		"1. - 1. - 1. - 1. - 1. - 1. item",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "清洗应是幂等的: %q", input)
	}
}

// TestNormalizeRepeatedListMarkers 深层嵌套的列表标记应被完整剥除
func TestNormalizeRepeatedListMarkers(t *testing.T) {
	assert.Equal(t, "item", Normalize("- - - - - - item"))
	assert.Equal(t, "item", Normalize("1. - 1. - 1. - 1. - 1. - 1. item"))
	assert.Equal(t, "item", Normalize("* • - 1. a) (iv) item"))
}

// TestNormalizeControlChars 控制字符替换为空格而不是丢失分词边界
func TestNormalizeControlChars(t *testing.T) {
	got := Normalize("python\x00sql")
	assert.Equal(t, "python sql", got)
}

// TestNormalizeNFKC 全角字符应被兼容分解为半角
func TestNormalizeNFKC(t *testing.T) {
	// 全角的 "ＳＱＬ" 应规整为 "sql"
	got := Normalize("ＳＱＬ")
	assert.Equal(t, "sql", got)
}
