package policy

import "fmt"

// Status 检查表状态
type Status string

const (
	StatusPending  Status = "pending"  // 待审批
	StatusRevision Status = "revision" // 修订中
	StatusApproved Status = "approved" // 已批准
)

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusRevision, StatusApproved:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, s)
	}
}

// Valid 判断状态是否合法
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRevision, StatusApproved:
		return true
	default:
		return false
	}
}

// Variant 检查表类型
type Variant string

const (
	VariantDIR Variant = "dir" // 尺寸检验记录 (Dimensional Inspection Record)
	VariantFI  Variant = "fi"  // 终检 (Final Inspection)
)

// ParseVariant 解析检查表类型字符串
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantDIR, VariantFI:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("%w: unknown checksheet variant %q", ErrInvalidInput, s)
	}
}

// Verdict 测量判定结果
type Verdict string

const (
	VerdictOK Verdict = "ok" // 合格
	VerdictNG Verdict = "ng" // 不合格
)

// InspectionResult 终检项目状态
type InspectionResult string

const (
	InspectionGood        InspectionResult = "good"         // 良好
	InspectionAfterRepair InspectionResult = "after_repair" // 返修后合格
	InspectionNA          InspectionResult = "na"           // 不适用
)

// ParseInspectionResult 解析终检项目状态字符串
func ParseInspectionResult(s string) (InspectionResult, error) {
	switch InspectionResult(s) {
	case InspectionGood, InspectionAfterRepair, InspectionNA:
		return InspectionResult(s), nil
	default:
		return "", fmt.Errorf("%w: unknown inspection result %q", ErrInvalidInput, s)
	}
}
