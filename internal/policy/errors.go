package policy

import (
	"errors"
	"fmt"
)

// 引擎统一错误类型
// 所有服务层操作的失败都归入以下错误之一,通过 errors.Is 匹配
var (
	// ErrForbidden 角色或权限规则不允许该操作
	ErrForbidden = errors.New("forbidden")

	// ErrNotOwner 检验员操作了他人的检查表(ErrForbidden 的特化)
	ErrNotOwner = fmt.Errorf("%w: not the owner of this checksheet", ErrForbidden)

	// ErrNotFound 目标记录不存在或已被软删除
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStatus 状态值不在枚举范围内,或请求的状态流转不合法
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidInput 输入参数不合法(如公差上下限颠倒、非有限数值)
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict 唯一性约束冲突(序列号重复、修订号重复、并发写冲突)
	ErrConflict = errors.New("conflict")

	// ErrStorage 存储层未预期的失败,由调用方决定重试或上报
	ErrStorage = errors.New("storage error")
)
