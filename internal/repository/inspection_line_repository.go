package repository

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"gorm.io/gorm"
)

// InspectionLineRepository 终检行仓储接口
type InspectionLineRepository interface {
	Save(line *model.InspectionLineModel) error
	SaveAll(lines []*model.InspectionLineModel) error
	FindByID(id string) (*model.InspectionLineModel, error)
	FindByChecksheet(checksheetID string) ([]*model.InspectionLineModel, error)
	SoftDelete(id string) error
}

// inspectionLineRepository 终检行仓储实现
type inspectionLineRepository struct {
	db *gorm.DB
}

// NewInspectionLineRepository 创建终检行仓储
func NewInspectionLineRepository(db *gorm.DB) InspectionLineRepository {
	return &inspectionLineRepository{db: db}
}

// Save 保存终检行
func (r *inspectionLineRepository) Save(line *model.InspectionLineModel) error {
	return r.db.Save(line).Error
}

// SaveAll 批量保存终检行
func (r *inspectionLineRepository) SaveAll(lines []*model.InspectionLineModel) error {
	for _, line := range lines {
		if err := r.db.Save(line).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID 根据 ID 查找终检行,已删除的记录视为不存在
func (r *inspectionLineRepository) FindByID(id string) (*model.InspectionLineModel, error) {
	var line model.InspectionLineModel
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindByChecksheet 查找检查表下的全部终检行
func (r *inspectionLineRepository) FindByChecksheet(checksheetID string) ([]*model.InspectionLineModel, error) {
	var lines []*model.InspectionLineModel
	err := r.db.Where("checksheet_id = ? AND deleted_at IS NULL", checksheetID).
		Order("created_at ASC").Find(&lines).Error
	return lines, err
}

// SoftDelete 软删除终检行
func (r *inspectionLineRepository) SoftDelete(id string) error {
	now := time.Now()
	result := r.db.Model(&model.InspectionLineModel{}).
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
