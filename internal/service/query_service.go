package service

import (
	"fmt"
	"strings"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/mautops/checksheet-gin/internal/repository"
	"github.com/mautops/checksheet-gin/internal/utils"
	"gorm.io/gorm"
)

// QueryService 查询服务接口
// 只读,所有查询都排除已软删除的记录
type QueryService interface {
	ListChecksheets(filter *ListChecksheetsFilter) ([]*model.ChecksheetModel, int64, error)
	GetChecksheetBySerial(variant string, serialNumber string) (*model.ChecksheetModel, error)
	GetMeasurements(checksheetID string) ([]*model.MeasurementLineModel, error)
	GetInspectionLines(checksheetID string) ([]*model.InspectionLineModel, error)
	GetApprovals(checksheetID string) ([]*model.ApprovalRecordModel, error)
	GetApprovalsByApprover(approverID string) ([]*model.ApprovalRecordModel, error)
	GetRevisions(checksheetID string) ([]*model.RevisionRecordModel, error)
}

// ListChecksheetsFilter 检查表列表查询过滤器
type ListChecksheetsFilter struct {
	Variant      *string `form:"variant"`
	Status       *string `form:"status"`
	OwnerID      *string `form:"owner_id"`
	SerialNumber *string `form:"serial_number"`
	StartTime    *string `form:"created_at_start"`
	EndTime      *string `form:"created_at_end"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
	SortBy       string  `form:"sort_by"`
	Order        string  `form:"order"`
}

// 可用于排序的字段白名单
var checksheetSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"serial_number": true,
	"status":        true,
	"variant":       true,
}

// queryService 查询服务实现
type queryService struct {
	db           *gorm.DB
	sheetRepo    repository.ChecksheetRepository
	measureRepo  repository.MeasurementLineRepository
	inspectRepo  repository.InspectionLineRepository
	approvalRepo repository.ApprovalRecordRepository
	revisionRepo repository.RevisionRecordRepository
}

// NewQueryService 创建查询服务
func NewQueryService(db *gorm.DB) QueryService {
	return &queryService{
		db:           db,
		sheetRepo:    repository.NewChecksheetRepository(db),
		measureRepo:  repository.NewMeasurementLineRepository(db),
		inspectRepo:  repository.NewInspectionLineRepository(db),
		approvalRepo: repository.NewApprovalRecordRepository(db),
		revisionRepo: repository.NewRevisionRecordRepository(db),
	}
}

// ListChecksheets 分页查询检查表列表
func (s *queryService) ListChecksheets(filter *ListChecksheetsFilter) ([]*model.ChecksheetModel, int64, error) {
	query := s.db.Model(&model.ChecksheetModel{}).Where("deleted_at IS NULL")

	if filter.Variant != nil && *filter.Variant != "" {
		variant, err := policy.ParseVariant(*filter.Variant)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("variant = ?", variant)
	}
	if filter.Status != nil && *filter.Status != "" {
		status, err := policy.ParseStatus(*filter.Status)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("status = ?", status)
	}
	if filter.OwnerID != nil && *filter.OwnerID != "" {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.SerialNumber != nil && *filter.SerialNumber != "" {
		query = query.Where("serial_number LIKE ?", "%"+*filter.SerialNumber+"%")
	}
	if filter.StartTime != nil && *filter.StartTime != "" {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil && *filter.EndTime != "" {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count checksheets: %w", err)
	}

	// 排序字段白名单,排序方向规整为 ASC/DESC
	sortBy := utils.SanitizeSortField(filter.SortBy)
	if sortBy == "" {
		sortBy = "created_at"
	}
	if err := utils.ValidateSortField(sortBy); err != nil || !checksheetSortFields[sortBy] {
		return nil, 0, fmt.Errorf("%w: cannot sort by %q", policy.ErrInvalidInput, filter.SortBy)
	}
	if filter.Order != "" {
		if err := utils.ValidateSortOrder(filter.Order); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", policy.ErrInvalidInput, err)
		}
	}
	order := utils.SanitizeSortOrder(filter.Order)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var sheets []*model.ChecksheetModel
	err := query.Order(strings.Join([]string{sortBy, order}, " ")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sheets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list checksheets: %w", err)
	}

	return sheets, total, nil
}

// GetChecksheetBySerial 按类型和序列号查找检查表
// 供产线按工件序列号直接定位记录
func (s *queryService) GetChecksheetBySerial(variant string, serialNumber string) (*model.ChecksheetModel, error) {
	parsed, err := policy.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateSerialNumber(serialNumber); err != nil {
		return nil, fmt.Errorf("%w: %s", policy.ErrInvalidInput, err.Error())
	}
	return s.sheetRepo.FindBySerial(parsed, serialNumber)
}

// GetMeasurements 查询检查表的测量行
func (s *queryService) GetMeasurements(checksheetID string) ([]*model.MeasurementLineModel, error) {
	if _, err := s.sheetRepo.FindByID(checksheetID); err != nil {
		return nil, err
	}
	return s.measureRepo.FindByChecksheet(checksheetID)
}

// GetInspectionLines 查询检查表的终检行
func (s *queryService) GetInspectionLines(checksheetID string) ([]*model.InspectionLineModel, error) {
	if _, err := s.sheetRepo.FindByID(checksheetID); err != nil {
		return nil, err
	}
	return s.inspectRepo.FindByChecksheet(checksheetID)
}

// GetApprovals 查询检查表的审批记录
func (s *queryService) GetApprovals(checksheetID string) ([]*model.ApprovalRecordModel, error) {
	sheet, err := s.sheetRepo.FindByID(checksheetID)
	if err != nil {
		return nil, err
	}
	return s.approvalRepo.FindByReference(sheet.Variant, sheet.ID)
}

// GetApprovalsByApprover 查询某签核人的全部审批记录
func (s *queryService) GetApprovalsByApprover(approverID string) ([]*model.ApprovalRecordModel, error) {
	if approverID == "" {
		return nil, fmt.Errorf("%w: approver ID is required", policy.ErrInvalidInput)
	}
	return s.approvalRepo.FindByApprover(approverID)
}

// GetRevisions 查询检查表的修订记录
func (s *queryService) GetRevisions(checksheetID string) ([]*model.RevisionRecordModel, error) {
	sheet, err := s.sheetRepo.FindByID(checksheetID)
	if err != nil {
		return nil, err
	}
	return s.revisionRepo.FindByReference(sheet.Variant, sheet.ID)
}
