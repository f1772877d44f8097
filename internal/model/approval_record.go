package model

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/policy"
)

// ApprovalRecordModel 审批记录数据模型
// 只追加,检查表流转进入 approved 状态时写入一条
type ApprovalRecordModel struct {
	ID            string         `gorm:"primaryKey;type:varchar(64)"`
	ReferenceType policy.Variant `gorm:"type:varchar(8);not null;index:idx_approvals_reference"` // 检查表类型: dir/fi
	ReferenceID   string         `gorm:"type:varchar(64);not null;index:idx_approvals_reference"`
	ApprovedBy    string         `gorm:"type:varchar(64);not null;index"` // 签核人 ID
	Note          string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"not null;index"` // 签核时间
}

// TableName 指定表名
func (ApprovalRecordModel) TableName() string {
	return "approval_records"
}

// Validate 验证审批记录模型
func (arm *ApprovalRecordModel) Validate() error {
	if arm.ID == "" {
		return errors.New("record ID is required")
	}
	if arm.ReferenceType != policy.VariantDIR && arm.ReferenceType != policy.VariantFI {
		return errors.New("reference type must be dir or fi")
	}
	if arm.ReferenceID == "" {
		return errors.New("reference ID is required")
	}
	if arm.ApprovedBy == "" {
		return errors.New("approver is required")
	}
	return nil
}
