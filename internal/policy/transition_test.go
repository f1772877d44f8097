package policy_test

import (
	"testing"

	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/stretchr/testify/assert"
)

// TestAuthorizeCreate 测试创建授权
func TestAuthorizeCreate(t *testing.T) {
	// 检验员可以创建
	decision := policy.AuthorizeCreate(policy.Actor{UserID: "user-001", Role: policy.RoleInspector})
	assert.True(t, decision.Allowed)
	assert.NoError(t, decision.Err())

	// 主管不能创建
	decision = policy.AuthorizeCreate(policy.Actor{UserID: "user-002", Role: policy.RoleSupervisor})
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrForbidden)

	// 操作员不能创建
	decision = policy.AuthorizeCreate(policy.Actor{UserID: "user-003", Role: policy.RoleOperator})
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrForbidden)
}

// TestAuthorizeEdit 测试编辑授权
func TestAuthorizeEdit(t *testing.T) {
	inspector := policy.Actor{UserID: "user-001", Role: policy.RoleInspector}
	supervisor := policy.Actor{UserID: "user-002", Role: policy.RoleSupervisor}
	operator := policy.Actor{UserID: "user-003", Role: policy.RoleOperator}

	// 检验员在 pending/revision 状态可以编辑
	assert.True(t, policy.AuthorizeEdit(inspector, policy.StatusPending).Allowed)
	assert.True(t, policy.AuthorizeEdit(inspector, policy.StatusRevision).Allowed)

	// 检验员不能编辑已批准的检查表
	decision := policy.AuthorizeEdit(inspector, policy.StatusApproved)
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrForbidden)

	// 主管和操作员不受批准状态限制
	assert.True(t, policy.AuthorizeEdit(supervisor, policy.StatusApproved).Allowed)
	assert.True(t, policy.AuthorizeEdit(operator, policy.StatusApproved).Allowed)

	// 非法状态被拒绝
	decision = policy.AuthorizeEdit(supervisor, policy.Status("unknown"))
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrInvalidStatus)
}

// TestAuthorizeDelete 测试删除授权
func TestAuthorizeDelete(t *testing.T) {
	inspector := policy.Actor{UserID: "user-001", Role: policy.RoleInspector}
	supervisor := policy.Actor{UserID: "user-002", Role: policy.RoleSupervisor}

	assert.True(t, policy.AuthorizeDelete(inspector, policy.StatusPending).Allowed)

	decision := policy.AuthorizeDelete(inspector, policy.StatusApproved)
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrForbidden)

	assert.True(t, policy.AuthorizeDelete(supervisor, policy.StatusApproved).Allowed)
}

// TestAuthorizeTransition_Approve 测试批准流转
func TestAuthorizeTransition_Approve(t *testing.T) {
	supervisor := policy.Actor{UserID: "user-002", Role: policy.RoleSupervisor}
	operator := policy.Actor{UserID: "user-003", Role: policy.RoleOperator}

	// pending -> approved 产生审批记录
	effect, decision := policy.AuthorizeTransition(supervisor, policy.StatusPending, policy.StatusApproved)
	assert.True(t, decision.Allowed)
	assert.True(t, effect.AppendApproval)
	assert.False(t, effect.AppendRevision)

	// revision -> approved 同样产生审批记录
	effect, decision = policy.AuthorizeTransition(operator, policy.StatusRevision, policy.StatusApproved)
	assert.True(t, decision.Allowed)
	assert.True(t, effect.AppendApproval)

	// approved -> approved 无效
	_, decision = policy.AuthorizeTransition(supervisor, policy.StatusApproved, policy.StatusApproved)
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrInvalidStatus)
}

// TestAuthorizeTransition_Reopen 测试重新打开已批准的检查表
func TestAuthorizeTransition_Reopen(t *testing.T) {
	supervisor := policy.Actor{UserID: "user-002", Role: policy.RoleSupervisor}
	operator := policy.Actor{UserID: "user-003", Role: policy.RoleOperator}

	// 主管可以退回,产生修订记录
	effect, decision := policy.AuthorizeTransition(supervisor, policy.StatusApproved, policy.StatusRevision)
	assert.True(t, decision.Allowed)
	assert.True(t, effect.AppendRevision)
	assert.False(t, effect.AppendApproval)

	effect, decision = policy.AuthorizeTransition(supervisor, policy.StatusApproved, policy.StatusPending)
	assert.True(t, decision.Allowed)
	assert.True(t, effect.AppendRevision)

	// 操作员不能重新打开已批准的检查表
	_, decision = policy.AuthorizeTransition(operator, policy.StatusApproved, policy.StatusRevision)
	assert.False(t, decision.Allowed)
	assert.ErrorIs(t, decision.Err(), policy.ErrForbidden)
}

// TestAuthorizeTransition_Inspector 测试检验员无流转权限
func TestAuthorizeTransition_Inspector(t *testing.T) {
	inspector := policy.Actor{UserID: "user-001", Role: policy.RoleInspector}

	for _, to := range []policy.Status{policy.StatusPending, policy.StatusRevision, policy.StatusApproved} {
		_, decision := policy.AuthorizeTransition(inspector, policy.StatusPending, to)
		assert.False(t, decision.Allowed)
		assert.ErrorIs(t, decision.Err(), policy.ErrForbidden)
	}
}

// TestAuthorizeTransition_PendingRevision 测试 pending 与 revision 互转
func TestAuthorizeTransition_PendingRevision(t *testing.T) {
	operator := policy.Actor{UserID: "user-003", Role: policy.RoleOperator}

	effect, decision := policy.AuthorizeTransition(operator, policy.StatusPending, policy.StatusRevision)
	assert.True(t, decision.Allowed)
	assert.False(t, effect.AppendApproval)
	assert.False(t, effect.AppendRevision)

	effect, decision = policy.AuthorizeTransition(operator, policy.StatusRevision, policy.StatusPending)
	assert.True(t, decision.Allowed)
	assert.False(t, effect.AppendApproval)
	assert.False(t, effect.AppendRevision)
}
