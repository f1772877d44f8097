package repository

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"gorm.io/gorm"
)

// MeasurementLineRepository 测量行仓储接口
type MeasurementLineRepository interface {
	Save(line *model.MeasurementLineModel) error
	SaveAll(lines []*model.MeasurementLineModel) error
	FindByID(id string) (*model.MeasurementLineModel, error)
	FindByChecksheet(checksheetID string) ([]*model.MeasurementLineModel, error)
	SoftDelete(id string) error
}

// measurementLineRepository 测量行仓储实现
type measurementLineRepository struct {
	db *gorm.DB
}

// NewMeasurementLineRepository 创建测量行仓储
func NewMeasurementLineRepository(db *gorm.DB) MeasurementLineRepository {
	return &measurementLineRepository{db: db}
}

// Save 保存测量行
func (r *measurementLineRepository) Save(line *model.MeasurementLineModel) error {
	return r.db.Save(line).Error
}

// SaveAll 批量保存测量行
// 调用方负责把本方法包在事务里以保证全有或全无
func (r *measurementLineRepository) SaveAll(lines []*model.MeasurementLineModel) error {
	for _, line := range lines {
		if err := r.db.Save(line).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID 根据 ID 查找测量行,已删除的记录视为不存在
func (r *measurementLineRepository) FindByID(id string) (*model.MeasurementLineModel, error) {
	var line model.MeasurementLineModel
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindByChecksheet 查找检查表下的全部测量行
func (r *measurementLineRepository) FindByChecksheet(checksheetID string) ([]*model.MeasurementLineModel, error) {
	var lines []*model.MeasurementLineModel
	err := r.db.Where("checksheet_id = ? AND deleted_at IS NULL", checksheetID).
		Order("created_at ASC").Find(&lines).Error
	return lines, err
}

// SoftDelete 软删除测量行
func (r *measurementLineRepository) SoftDelete(id string) error {
	now := time.Now()
	result := r.db.Model(&model.MeasurementLineModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}
