package repository

import (
	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"gorm.io/gorm"
)

// ApprovalRecordRepository 审批记录仓储接口
// 审批账本只追加,不提供更新和删除
type ApprovalRecordRepository interface {
	Save(record *model.ApprovalRecordModel) error
	FindByReference(referenceType policy.Variant, referenceID string) ([]*model.ApprovalRecordModel, error)
	FindByApprover(approver string) ([]*model.ApprovalRecordModel, error)
}

// approvalRecordRepository 审批记录仓储实现
type approvalRecordRepository struct {
	db *gorm.DB
}

// NewApprovalRecordRepository 创建审批记录仓储
func NewApprovalRecordRepository(db *gorm.DB) ApprovalRecordRepository {
	return &approvalRecordRepository{db: db}
}

// Save 追加审批记录
func (r *approvalRecordRepository) Save(record *model.ApprovalRecordModel) error {
	return r.db.Create(record).Error
}

// FindByReference 查找某检查表的全部审批记录
func (r *approvalRecordRepository) FindByReference(referenceType policy.Variant, referenceID string) ([]*model.ApprovalRecordModel, error) {
	var records []*model.ApprovalRecordModel
	err := r.db.Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("created_at ASC").Find(&records).Error
	return records, err
}

// FindByApprover 根据签核人查找审批记录
func (r *approvalRecordRepository) FindByApprover(approver string) ([]*model.ApprovalRecordModel, error) {
	var records []*model.ApprovalRecordModel
	err := r.db.Where("approved_by = ?", approver).
		Order("created_at DESC").Find(&records).Error
	return records, err
}
