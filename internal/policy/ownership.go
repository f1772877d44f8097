package policy

// Decision 授权判定结果
// 显式的 Allow/Deny 标签让策略可以脱离任何传输层单独测试
type Decision struct {
	Allowed bool
	Reason  error
}

// Allow 允许操作
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny 拒绝操作并附带原因
func Deny(reason error) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err 返回拒绝原因,允许时返回 nil
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

// AuthorizeMutation 所有权检查
// 非检验员角色不受所有权限制,其权限完全由状态流转策略决定;
// 检验员只能操作自己创建的检查表,行项目继承父检查表的所有权
func AuthorizeMutation(actor Actor, ownerID string) Decision {
	if actor.Role != RoleInspector {
		return Allow()
	}
	if actor.UserID == ownerID {
		return Allow()
	}
	return Deny(ErrNotOwner)
}
