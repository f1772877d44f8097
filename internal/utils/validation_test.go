package utils_test

import (
	"strings"
	"testing"

	"github.com/mautops/checksheet-gin/internal/utils"
	"github.com/stretchr/testify/assert"
)

// TestValidateSerialNumber 测试序列号校验
func TestValidateSerialNumber(t *testing.T) {
	// 合法格式
	for _, s := range []string{"DIR-001", "FI_2026_08", "abc123", "A-1_b-2"} {
		assert.NoError(t, utils.ValidateSerialNumber(s), s)
	}

	// 空值
	assert.Error(t, utils.ValidateSerialNumber(""))
	assert.Error(t, utils.ValidateSerialNumber("   "))

	// 非法字符
	for _, s := range []string{"DIR 001", "DIR/001", "DIR;001", "工单-001"} {
		assert.Error(t, utils.ValidateSerialNumber(s), s)
	}

	// 超长
	assert.Error(t, utils.ValidateSerialNumber(strings.Repeat("a", 65)))
	assert.NoError(t, utils.ValidateSerialNumber(strings.Repeat("a", 64)))
}

// TestValidateItemName 测试检查项名称校验
func TestValidateItemName(t *testing.T) {
	assert.NoError(t, utils.ValidateItemName("外径"))
	assert.NoError(t, utils.ValidateItemName("outer diameter"))

	assert.Error(t, utils.ValidateItemName(""))
	assert.Error(t, utils.ValidateItemName(strings.Repeat("a", 256)))
	assert.Error(t, utils.ValidateItemName("<script>alert(1)</script>"))
	assert.Error(t, utils.ValidateItemName("x'; DROP TABLE checksheets"))
	// SQL 关键字匹配不区分大小写
	assert.Error(t, utils.ValidateItemName("DROP TABLE checksheets"))
	assert.Error(t, utils.ValidateItemName("union select 1"))
}

// TestSanitizeString 测试字符串清理
func TestSanitizeString(t *testing.T) {
	// HTML 转义
	assert.Equal(t, "&lt;b&gt;", utils.SanitizeString("<b>"))

	// 控制字符被移除,换行和制表符保留
	assert.Equal(t, "a\nb\tc", utils.SanitizeString("a\nb\tc\x00"))
}

// TestSanitizeSortOrder 测试排序方向规整
func TestSanitizeSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", utils.SanitizeSortOrder("asc"))
	assert.Equal(t, "DESC", utils.SanitizeSortOrder(" DESC "))
	assert.Equal(t, "DESC", utils.SanitizeSortOrder("evil; DROP TABLE"))
	assert.Equal(t, "DESC", utils.SanitizeSortOrder(""))
}

// TestValidateSortField 测试排序字段校验
func TestValidateSortField(t *testing.T) {
	assert.NoError(t, utils.ValidateSortField("created_at"))
	assert.NoError(t, utils.ValidateSortField("checksheets.serial_number"))

	assert.Error(t, utils.ValidateSortField(""))
	assert.Error(t, utils.ValidateSortField("created_at; DROP TABLE"))
	assert.Error(t, utils.ValidateSortField("UNION"))
}
