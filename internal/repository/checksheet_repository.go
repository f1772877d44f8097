package repository

import (
	"errors"
	"time"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"gorm.io/gorm"
)

// ChecksheetRepository 检查表仓储接口
// 所有查询都排除已软删除的记录
type ChecksheetRepository interface {
	Save(sheet *model.ChecksheetModel) error
	FindByID(id string) (*model.ChecksheetModel, error)
	FindBySerial(variant policy.Variant, serialNumber string) (*model.ChecksheetModel, error)
	SerialTaken(variant policy.Variant, serialNumber string, excludeID string) (bool, error)
	SoftDelete(id string) error
}

// checksheetRepository 检查表仓储实现
type checksheetRepository struct {
	db *gorm.DB
}

// NewChecksheetRepository 创建检查表仓储
func NewChecksheetRepository(db *gorm.DB) ChecksheetRepository {
	return &checksheetRepository{db: db}
}

// Save 保存检查表
func (r *checksheetRepository) Save(sheet *model.ChecksheetModel) error {
	return r.db.Save(sheet).Error
}

// FindByID 根据 ID 查找检查表,已删除的记录视为不存在
func (r *checksheetRepository) FindByID(id string) (*model.ChecksheetModel, error) {
	var sheet model.ChecksheetModel
	err := r.db.Where("id = ?", id).First(&sheet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	if sheet.Deleted() {
		return nil, policy.ErrNotFound
	}
	return &sheet, nil
}

// FindBySerial 根据类型和序列号查找检查表
func (r *checksheetRepository) FindBySerial(variant policy.Variant, serialNumber string) (*model.ChecksheetModel, error) {
	var sheet model.ChecksheetModel
	err := r.db.Where("variant = ? AND serial_number = ? AND deleted_at IS NULL", variant, serialNumber).
		First(&sheet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return &sheet, nil
}

// SerialTaken 判断序列号在同类型未删除记录中是否已被占用
// excludeID 非空时排除指定记录自身(用于更新时的唯一性校验)
func (r *checksheetRepository) SerialTaken(variant policy.Variant, serialNumber string, excludeID string) (bool, error) {
	query := r.db.Model(&model.ChecksheetModel{}).
		Where("variant = ? AND serial_number = ? AND deleted_at IS NULL", variant, serialNumber)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete 软删除检查表
// 行项目不级联标记,父记录删除后它们自然不可达
func (r *checksheetRepository) SoftDelete(id string) error {
	now := time.Now()
	result := r.db.Model(&model.ChecksheetModel{}).
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
