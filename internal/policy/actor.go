package policy

import "fmt"

// Role 调用者角色
type Role string

const (
	RoleInspector  Role = "inspector"  // 检验员
	RoleSupervisor Role = "supervisor" // 主管
	RoleOperator   Role = "operator"   // 操作员
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleInspector, RoleSupervisor, RoleOperator:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleInspector, RoleSupervisor, RoleOperator:
		return true
	default:
		return false
	}
}

// Actor 调用者身份
// 由外部认证层提供,引擎信任其中的角色声明
type Actor struct {
	UserID string
	Role   Role
}

// Validate 验证调用者身份
func (a Actor) Validate() error {
	if a.UserID == "" {
		return fmt.Errorf("%w: actor user ID is required", ErrInvalidInput)
	}
	if !a.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, a.Role)
	}
	return nil
}
