package repository

import (
	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"gorm.io/gorm"
)

// RevisionRecordRepository 修订记录仓储接口
// 修订账本只追加;NextNumber 必须和随后的 Save 放在同一个事务里,
// 用事务作用域的仓储实例 (NewRevisionRecordRepository(tx)) 调用
type RevisionRecordRepository interface {
	Save(record *model.RevisionRecordModel) error
	NextNumber(referenceType policy.Variant, referenceID string) (int, error)
	FindByReference(referenceType policy.Variant, referenceID string) ([]*model.RevisionRecordModel, error)
}

// revisionRecordRepository 修订记录仓储实现
type revisionRecordRepository struct {
	db *gorm.DB
}

// NewRevisionRecordRepository 创建修订记录仓储
func NewRevisionRecordRepository(db *gorm.DB) RevisionRecordRepository {
	return &revisionRecordRepository{db: db}
}

// Save 追加修订记录
func (r *revisionRecordRepository) Save(record *model.RevisionRecordModel) error {
	return r.db.Create(record).Error
}

// NextNumber 计算下一个修订号
// 按 (reference_type, reference_id) 取历史最大修订号加一,无记录时返回 1
// 历史修订全部计数,不排除任何记录
func (r *revisionRecordRepository) NextNumber(referenceType policy.Variant, referenceID string) (int, error) {
	var max int
	err := r.db.Model(&model.RevisionRecordModel{}).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Select("COALESCE(MAX(revision_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// FindByReference 查找某检查表的全部修订记录
func (r *revisionRecordRepository) FindByReference(referenceType policy.Variant, referenceID string) ([]*model.RevisionRecordModel, error) {
	var records []*model.RevisionRecordModel
	err := r.db.Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("revision_number ASC").Find(&records).Error
	return records, err
}
