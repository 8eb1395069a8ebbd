// Package textproc 提供匹配前的文本清洗。
// 清洗结果用于嵌入和技能提取，必须保证幂等：Normalize(Normalize(x)) == Normalize(x)。
package textproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// 预编译的清洗规则，进程内只读共享
var (
	// 控制字符（保留 \n 和 \t，由空白折叠统一处理）
	reControlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")

	// 跨行断词，例如 "micro-\nservices" -> "microservices"
	reLineBreakHyphen = regexp.MustCompile(`(\w)-\n(\w)`)

	// 行内空白折叠
	reSpacesTabs = regexp.MustCompile("[ \t]+")

	// 连续空行折叠为最多两个换行
	reManyNewlines = regexp.MustCompile(`\n{3,}`)

	// 代码围栏与行内代码：去掉标记，保留内容
	reCodeFence  = regexp.MustCompile("```([\\s\\S]*?)```")
	reInlineCode = regexp.MustCompile("`([^`]*)`")

	// 图片与链接：保留alt/label文本
	reImage = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	reLink  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)

	// 粗体/斜体标记
	reBoldStar   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reBoldUnder  = regexp.MustCompile(`__([^_]+)__`)
	reItalicStar = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnd  = regexp.MustCompile(`_([^_]+)_`)

	// 行首的标题标记
	reHeading = regexp.MustCompile(`(?m)^\s*#{1,6}\s*`)

	// 仅由装饰符号组成的行
	reDecorLine = regexp.MustCompile(`(?m)^\s*[-*_\x{2022}\x{00b7}]{3,}\s*$`)

	// 行首的项目符号（常见unicode圆点与破折号），连续重复一并消除
	reBullet = regexp.MustCompile(`(?m)^\s*(?:[\-\*\+\x{2022}\x{2023}\x{25E6}\x{2013}\x{2014}\x{00B7}\x{25AA}\x{25CF}]\s+)+`)

	// 行首的编号列表，例如 "1. " "a) " "(iv) "，连续重复一并消除
	reListNumber = regexp.MustCompile(`(?m)^\s*(?:\(?(?:[0-9]+|[A-Za-z]|[ivxlcdmIVXLCDM]+)[\).]\s+)+`)
)

// Normalize 清洗原始文本：统一unicode、去控制字符、剥离markdown标记和项目符号、
// 折叠空白并转为小写。技能词元（如 "c++"、".net"）在清洗后保持完整。
// 空白输入返回空串。对结果重复调用不会再改变内容。
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// 单趟清洗后行首可能再次暴露列表标记（例如 "1. - item"），
	// 循环到不动点以保证幂等，趟数以输入长度为界
	t := text
	for i := 0; i <= len(text); i++ {
		next := cleanOnce(t)
		if next == t {
			break
		}
		t = next
	}
	return t
}

// cleanOnce 执行一轮完整清洗
func cleanOnce(text string) string {
	// 统一unicode表示（全角转半角等）
	t := norm.NFKC.String(text)

	// 统一换行符
	t = strings.ReplaceAll(t, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")

	// 控制字符替换为空格，保留词边界
	t = reControlChars.ReplaceAllString(t, " ")

	// 修复跨行断词
	t = reLineBreakHyphen.ReplaceAllString(t, "$1$2")

	// 去除markdown标记，保留内容
	t = reCodeFence.ReplaceAllString(t, "$1")
	t = reInlineCode.ReplaceAllString(t, "$1")
	t = reImage.ReplaceAllString(t, "$1")
	t = reLink.ReplaceAllString(t, "$1")
	t = reBoldStar.ReplaceAllString(t, "$1")
	t = reBoldUnder.ReplaceAllString(t, "$1")
	t = reItalicStar.ReplaceAllString(t, "$1")
	t = reItalicUnd.ReplaceAllString(t, "$1")
	t = reHeading.ReplaceAllString(t, "")
	t = reDecorLine.ReplaceAllString(t, "")
	t = reBullet.ReplaceAllString(t, "")
	t = reListNumber.ReplaceAllString(t, "")

	// 折叠空白
	t = reSpacesTabs.ReplaceAllString(t, " ")
	t = reManyNewlines.ReplaceAllString(t, "\n\n")

	// 逐行去除首尾空格，避免折叠后残留的行首空格干扰行首规则
	lines := strings.Split(t, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	t = strings.Join(lines, "\n")
	t = reManyNewlines.ReplaceAllString(t, "\n\n")

	return strings.ToLower(strings.TrimSpace(t))
}
