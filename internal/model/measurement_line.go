package model

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/policy"
)

// MeasurementLineModel 尺寸测量行项目数据模型
// 仅属于 dir 类型检查表,所有权和生命周期继承父检查表
type MeasurementLineModel struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)"`
	ChecksheetID string         `gorm:"type:varchar(64);not null;index"` // 父检查表 ID
	Name         string         `gorm:"type:varchar(255);not null"`      // 测量项名称
	Nominal      float64        `gorm:"not null"`                        // 名义值
	ToleranceMin float64        `gorm:"not null"`                        // 公差下限
	ToleranceMax float64        `gorm:"not null"`                        // 公差上限
	Actual       float64        `gorm:"not null"`                        // 实测值
	Verdict      policy.Verdict `gorm:"type:varchar(4);not null"`        // 判定结果,始终由实测值和公差计算得出
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    *time.Time     `gorm:"index"`
}

// TableName 指定表名
func (MeasurementLineModel) TableName() string {
	return "measurement_lines"
}

// Validate 验证测量行模型
func (mm *MeasurementLineModel) Validate() error {
	if mm.ID == "" {
		return errors.New("measurement line ID is required")
	}
	if mm.ChecksheetID == "" {
		return errors.New("checksheet ID is required")
	}
	if mm.Name == "" {
		return errors.New("measurement name is required")
	}
	if mm.ToleranceMin > mm.ToleranceMax {
		return errors.New("tolerance min must not exceed tolerance max")
	}
	if mm.Verdict != policy.VerdictOK && mm.Verdict != policy.VerdictNG {
		return errors.New("verdict must be ok or ng")
	}
	return nil
}
