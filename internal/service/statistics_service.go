package service

import (
	"fmt"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"gorm.io/gorm"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetChecksheetStatisticsByStatus() ([]*ChecksheetStatisticsByStatus, error)
	GetChecksheetStatisticsByVariant() ([]*ChecksheetStatisticsByVariant, error)
	GetVerdictStatistics() (*VerdictStatistics, error)
	GetLedgerStatistics() (*LedgerStatistics, error)
}

// ChecksheetStatisticsByStatus 按状态统计
type ChecksheetStatisticsByStatus struct {
	Status string
	Count  int64
}

// ChecksheetStatisticsByVariant 按类型统计
type ChecksheetStatisticsByVariant struct {
	Variant string
	Count   int64
}

// VerdictStatistics 测量判定统计
type VerdictStatistics struct {
	TotalMeasurements int64
	OKCount           int64
	NGCount           int64
	PassRate          float64 // 百分比
}

// LedgerStatistics 审批/修订账本统计
type LedgerStatistics struct {
	TotalApprovals int64
	TotalRevisions int64
}

// statisticsService 统计服务实现
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetChecksheetStatisticsByStatus 按状态统计检查表
func (s *statisticsService) GetChecksheetStatisticsByStatus() ([]*ChecksheetStatisticsByStatus, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := s.db.Model(&model.ChecksheetModel{}).
		Select("status, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get checksheet statistics by status: %w", err)
	}

	stats := make([]*ChecksheetStatisticsByStatus, 0, len(results))
	for _, r := range results {
		stats = append(stats, &ChecksheetStatisticsByStatus{
			Status: r.Status,
			Count:  r.Count,
		})
	}

	return stats, nil
}

// GetChecksheetStatisticsByVariant 按类型统计检查表
func (s *statisticsService) GetChecksheetStatisticsByVariant() ([]*ChecksheetStatisticsByVariant, error) {
	var results []struct {
		Variant string
		Count   int64
	}

	err := s.db.Model(&model.ChecksheetModel{}).
		Select("variant, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("variant").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get checksheet statistics by variant: %w", err)
	}

	stats := make([]*ChecksheetStatisticsByVariant, 0, len(results))
	for _, r := range results {
		stats = append(stats, &ChecksheetStatisticsByVariant{
			Variant: r.Variant,
			Count:   r.Count,
		})
	}

	return stats, nil
}

// GetVerdictStatistics 获取测量判定统计
func (s *statisticsService) GetVerdictStatistics() (*VerdictStatistics, error) {
	var total int64
	err := s.db.Model(&model.MeasurementLineModel{}).
		Where("deleted_at IS NULL").
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count measurements: %w", err)
	}

	var okCount int64
	err = s.db.Model(&model.MeasurementLineModel{}).
		Where("deleted_at IS NULL AND verdict = ?", policy.VerdictOK).
		Count(&okCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count ok verdicts: %w", err)
	}

	passRate := 0.0
	if total > 0 {
		passRate = float64(okCount) / float64(total) * 100
	}

	return &VerdictStatistics{
		TotalMeasurements: total,
		OKCount:           okCount,
		NGCount:           total - okCount,
		PassRate:          passRate,
	}, nil
}

// GetLedgerStatistics 获取审批/修订账本统计
func (s *statisticsService) GetLedgerStatistics() (*LedgerStatistics, error) {
	var approvals int64
	if err := s.db.Model(&model.ApprovalRecordModel{}).Count(&approvals).Error; err != nil {
		return nil, fmt.Errorf("failed to count approval records: %w", err)
	}

	var revisions int64
	if err := s.db.Model(&model.RevisionRecordModel{}).Count(&revisions).Error; err != nil {
		return nil, fmt.Errorf("failed to count revision records: %w", err)
	}

	return &LedgerStatistics{
		TotalApprovals: approvals,
		TotalRevisions: revisions,
	}, nil
}
