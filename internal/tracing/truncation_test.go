package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSafeAttributeValueMasksPII 敏感字段名对应的值应被掩码
func TestSafeAttributeValueMasksPII(t *testing.T) {
	got := SafeAttributeValue("candidate_email", "myemail@example.com", DefaultMaxLength)
	assert.NotContains(t, got, "example")
	assert.Contains(t, got, "*")

	// 非敏感字段名原样保留
	got = SafeAttributeValue("job_title", "backend engineer", DefaultMaxLength)
	assert.Equal(t, "backend engineer", got)
}

// TestMaskPII 不同长度的值都不应泄露中间内容
func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "13*******78", MaskPII("13812345678"))
}

// TestTruncateString 超长字符串截断并保留首尾
func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))

	long := strings.Repeat("x", 50) + "TAIL"
	got := TruncateString(long, 20)
	assert.LessOrEqual(t, len([]rune(got)), 20)
	assert.Contains(t, got, "...")
	assert.True(t, strings.HasSuffix(got, "TAIL"), "截断应保留尾部内容")
}

// TestSafeRedisKey 超长键截断到上限以内
func TestSafeRedisKey(t *testing.T) {
	key := "app:embedding:vector:" + strings.Repeat("f", 200)
	got := SafeRedisKey(key)
	assert.LessOrEqual(t, len([]rune(got)), MaxRedisLength)
	assert.Contains(t, got, "app:embedding:vector:")
}

// TestSafeResumeContent 简历内容截断到上限以内
func TestSafeResumeContent(t *testing.T) {
	content := strings.Repeat("experienced engineer ", 30)
	got := SafeResumeContent(content)
	assert.LessOrEqual(t, len([]rune(got)), MaxResumeLength)
}
