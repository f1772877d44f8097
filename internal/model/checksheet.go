package model

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/policy"
)

// ChecksheetModel 检查表数据模型
// 覆盖尺寸检验记录 (dir) 和终检 (fi) 两种类型
type ChecksheetModel struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)"`
	Variant      policy.Variant `gorm:"type:varchar(8);not null;index"`  // 检查表类型: dir/fi
	SerialNumber string         `gorm:"type:varchar(64);not null;index"` // 序列号/单号,同类型未删除记录内唯一
	OwnerID      string         `gorm:"type:varchar(64);not null;index"` // 创建该记录的检验员 ID
	Status       policy.Status  `gorm:"type:varchar(16);not null;index"` // 检查表状态
	Remark       string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"not null;index"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    *time.Time     `gorm:"index"` // 软删除时间,非空的记录对所有查询不可见
}

// TableName 指定表名
func (ChecksheetModel) TableName() string {
	return "checksheets"
}

// Validate 验证检查表模型
func (cm *ChecksheetModel) Validate() error {
	if cm.ID == "" {
		return errors.New("checksheet ID is required")
	}
	if cm.Variant != policy.VariantDIR && cm.Variant != policy.VariantFI {
		return errors.New("checksheet variant must be dir or fi")
	}
	if cm.SerialNumber == "" {
		return errors.New("serial number is required")
	}
	if cm.OwnerID == "" {
		return errors.New("owner ID is required")
	}
	if !cm.Status.Valid() {
		return errors.New("checksheet status is invalid")
	}
	return nil
}

// Deleted 判断检查表是否已被软删除
func (cm *ChecksheetModel) Deleted() bool {
	return cm.DeletedAt != nil
}
