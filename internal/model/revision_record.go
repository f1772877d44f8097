package model

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/policy"
)

// RevisionRecordModel 修订记录数据模型
// 只追加,检查表从 approved 状态退回时写入一条
// 修订号从 1 开始,按 (reference_type, reference_id) 单调递增,
// 唯一索引 idx_revisions_sequence 兜底并发写入产生的重号
type RevisionRecordModel struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)"`
	ReferenceType  policy.Variant `gorm:"type:varchar(8);not null;uniqueIndex:idx_revisions_sequence"`
	ReferenceID    string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_revisions_sequence"`
	RevisionNumber int            `gorm:"not null;uniqueIndex:idx_revisions_sequence"`
	Note           string         `gorm:"type:text"`                       // 修订原因
	RevisedBy      string         `gorm:"type:varchar(64);not null;index"` // 发起修订的主管 ID
	CreatedAt      time.Time      `gorm:"not null;index"`
}

// TableName 指定表名
func (RevisionRecordModel) TableName() string {
	return "revision_records"
}

// Validate 验证修订记录模型
func (rm *RevisionRecordModel) Validate() error {
	if rm.ID == "" {
		return errors.New("record ID is required")
	}
	if rm.ReferenceType != policy.VariantDIR && rm.ReferenceType != policy.VariantFI {
		return errors.New("reference type must be dir or fi")
	}
	if rm.ReferenceID == "" {
		return errors.New("reference ID is required")
	}
	if rm.RevisionNumber < 1 {
		return errors.New("revision number must be positive")
	}
	if rm.RevisedBy == "" {
		return errors.New("reviser is required")
	}
	return nil
}
