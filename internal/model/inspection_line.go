package model

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/policy"
)

// InspectionLineModel 终检观察行项目数据模型
// 仅属于 fi 类型检查表,所有权和生命周期继承父检查表
type InspectionLineModel struct {
	ID           string                  `gorm:"primaryKey;type:varchar(64)"`
	ChecksheetID string                  `gorm:"type:varchar(64);not null;index"` // 父检查表 ID
	ItemName     string                  `gorm:"type:varchar(255);not null"`      // 检查项目名称
	Result       policy.InspectionResult `gorm:"type:varchar(16);not null"`       // 检查结果: good/after_repair/na
	Remark       string                  `gorm:"type:text"`
	CreatedAt    time.Time               `gorm:"not null"`
	UpdatedAt    time.Time               `gorm:"not null"`
	DeletedAt    *time.Time              `gorm:"index"`
}

// TableName 指定表名
func (InspectionLineModel) TableName() string {
	return "inspection_lines"
}

// Validate 验证终检行模型
func (im *InspectionLineModel) Validate() error {
	if im.ID == "" {
		return errors.New("inspection line ID is required")
	}
	if im.ChecksheetID == "" {
		return errors.New("checksheet ID is required")
	}
	if im.ItemName == "" {
		return errors.New("item name is required")
	}
	if _, err := policy.ParseInspectionResult(string(im.Result)); err != nil {
		return errors.New("inspection result is invalid")
	}
	return nil
}
