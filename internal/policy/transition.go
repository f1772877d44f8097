package policy

import "fmt"

// TransitionEffect 状态流转附带的记账动作
type TransitionEffect struct {
	AppendApproval bool // 流转进入 approved 时追加审批记录
	AppendRevision bool // 从 approved 流转出来时追加修订记录
}

// AuthorizeCreate 创建检查表
// 只有检验员可以创建,新检查表的初始状态为 pending
func AuthorizeCreate(actor Actor) Decision {
	if actor.Role != RoleInspector {
		return Deny(fmt.Errorf("%w: only inspectors may create checksheets", ErrForbidden))
	}
	return Allow()
}

// AuthorizeEdit 编辑检查表字段或行项目
// 检验员仅在检查表未批准时可编辑;主管和操作员不受状态限制
// 所有权检查由 AuthorizeMutation 负责,两者必须配对使用
func AuthorizeEdit(actor Actor, status Status) Decision {
	if !status.Valid() {
		return Deny(fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	if actor.Role == RoleInspector && status == StatusApproved {
		return Deny(fmt.Errorf("%w: cannot modify an approved checksheet", ErrForbidden))
	}
	return Allow()
}

// AuthorizeDelete 删除检查表或行项目(软删除)
// 规则与编辑一致:检验员不能删除已批准的记录
func AuthorizeDelete(actor Actor, status Status) Decision {
	if !status.Valid() {
		return Deny(fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	if actor.Role == RoleInspector && status == StatusApproved {
		return Deny(fmt.Errorf("%w: cannot delete an approved checksheet", ErrForbidden))
	}
	return Allow()
}

// AuthorizeTransition 状态流转
// 状态流转只对主管和操作员开放;已批准的记录只有主管可以重新打开,
// 防止检验员或操作员悄悄撤销主管的签核决定
func AuthorizeTransition(actor Actor, from, to Status) (TransitionEffect, Decision) {
	var effect TransitionEffect

	if !to.Valid() {
		return effect, Deny(fmt.Errorf("%w: %q", ErrInvalidStatus, to))
	}
	if !from.Valid() {
		return effect, Deny(fmt.Errorf("%w: %q", ErrInvalidStatus, from))
	}
	if actor.Role == RoleInspector {
		return effect, Deny(fmt.Errorf("%w: inspectors may not change checksheet status", ErrForbidden))
	}

	// 进入 approved: 主管或操作员,且当前状态必须是 pending 或 revision
	if to == StatusApproved {
		if from == StatusApproved {
			return effect, Deny(fmt.Errorf("%w: checksheet is already approved", ErrInvalidStatus))
		}
		effect.AppendApproval = true
		return effect, Allow()
	}

	// 从 approved 退回 pending/revision: 仅主管可以重新打开
	if from == StatusApproved {
		if actor.Role != RoleSupervisor {
			return effect, Deny(fmt.Errorf("%w: only supervisors may reopen an approved checksheet", ErrForbidden))
		}
		effect.AppendRevision = true
		return effect, Allow()
	}

	// pending <-> revision: 主管或操作员,无需记账
	return effect, Allow()
}
