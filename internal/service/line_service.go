package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/checksheet-gin/internal/metrics"
	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/mautops/checksheet-gin/internal/repository"
	"github.com/mautops/checksheet-gin/internal/utils"
	"gorm.io/gorm"
)

// LineService 行项目服务接口
// 测量行和终检行的所有权与生命周期都继承父检查表;
// 每次写入测量值都会重新计算判定结果
type LineService interface {
	SaveMeasurement(ctx context.Context, actor policy.Actor, checksheetID string, req *SaveMeasurementRequest) (*model.MeasurementLineModel, error)
	DeleteMeasurement(ctx context.Context, actor policy.Actor, lineID string) error
	BulkAddMeasurements(ctx context.Context, actor policy.Actor, checksheetID string, inputs []*MeasurementInput) ([]*model.MeasurementLineModel, error)

	SaveInspectionLine(ctx context.Context, actor policy.Actor, checksheetID string, req *SaveInspectionLineRequest) (*model.InspectionLineModel, error)
	DeleteInspectionLine(ctx context.Context, actor policy.Actor, lineID string) error
	BulkAddInspectionLines(ctx context.Context, actor policy.Actor, checksheetID string, inputs []*InspectionLineInput) ([]*model.InspectionLineModel, error)
}

// SaveMeasurementRequest 保存测量行请求
// ID 为空时新建,否则更新已有行
type SaveMeasurementRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name" binding:"required"`
	Nominal      float64 `json:"nominal"`
	ToleranceMin float64 `json:"tolerance_min"`
	ToleranceMax float64 `json:"tolerance_max"`
	Actual       float64 `json:"actual"`
}

// MeasurementInput 批量新增测量行的单行输入
type MeasurementInput struct {
	Name         string  `json:"name" binding:"required"`
	Nominal      float64 `json:"nominal"`
	ToleranceMin float64 `json:"tolerance_min"`
	ToleranceMax float64 `json:"tolerance_max"`
	Actual       float64 `json:"actual"`
}

// SaveInspectionLineRequest 保存终检行请求
type SaveInspectionLineRequest struct {
	ID       string `json:"id"`
	ItemName string `json:"item_name" binding:"required"`
	Result   string `json:"result" binding:"required"`
	Remark   string `json:"remark"`
}

// InspectionLineInput 批量新增终检行的单行输入
type InspectionLineInput struct {
	ItemName string `json:"item_name" binding:"required"`
	Result   string `json:"result" binding:"required"`
	Remark   string `json:"remark"`
}

// lineService 行项目服务实现
type lineService struct {
	db          *gorm.DB
	auditLogSvc AuditLogService
}

// NewLineService 创建行项目服务
func NewLineService(db *gorm.DB, auditLogSvc AuditLogService) LineService {
	return &lineService{
		db:          db,
		auditLogSvc: auditLogSvc,
	}
}

// resolveParent 解析父检查表并完成配对的所有权和状态授权
// 父记录缺失或已软删除时返回 ErrNotFound
func resolveParent(tx *gorm.DB, actor policy.Actor, checksheetID string, variant policy.Variant) (*model.ChecksheetModel, error) {
	sheet, err := repository.NewChecksheetRepository(tx).FindByID(checksheetID)
	if err != nil {
		return nil, err
	}
	if sheet.Variant != variant {
		return nil, fmt.Errorf("%w: checksheet %s is not a %s record", policy.ErrInvalidInput, checksheetID, variant)
	}
	if d := policy.AuthorizeMutation(actor, sheet.OwnerID); !d.Allowed {
		return nil, d.Reason
	}
	if d := policy.AuthorizeEdit(actor, sheet.Status); !d.Allowed {
		return nil, d.Reason
	}
	return sheet, nil
}

// touchParent 用授权时读到的状态条件更新父检查表
// 零行受影响说明状态在读与写之间被并发修改,整个事务回滚
func touchParent(tx *gorm.DB, sheet *model.ChecksheetModel) error {
	result := tx.Model(&model.ChecksheetModel{}).
		Where("id = ? AND status = ? AND deleted_at IS NULL", sheet.ID, sheet.Status).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("%w: %v", policy.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: checksheet status changed concurrently", policy.ErrConflict)
	}
	return nil
}

// SaveMeasurement 新建或更新测量行
// 判定结果在持久化前由实测值和公差重新计算,从不接受外部传入
func (s *lineService) SaveMeasurement(ctx context.Context, actor policy.Actor, checksheetID string, req *SaveMeasurementRequest) (*model.MeasurementLineModel, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateItemName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", policy.ErrInvalidInput, err)
	}
	verdict, err := policy.EvaluateTolerance(req.Actual, req.ToleranceMin, req.ToleranceMax)
	if err != nil {
		return nil, err
	}

	var line *model.MeasurementLineModel
	err = s.db.Transaction(func(tx *gorm.DB) error {
		sheet, err := resolveParent(tx, actor, checksheetID, policy.VariantDIR)
		if err != nil {
			return err
		}

		lines := repository.NewMeasurementLineRepository(tx)
		now := time.Now()
		if req.ID == "" {
			line = &model.MeasurementLineModel{
				ID:           uuid.New().String(),
				ChecksheetID: sheet.ID,
				Name:         req.Name,
				Nominal:      req.Nominal,
				ToleranceMin: req.ToleranceMin,
				ToleranceMax: req.ToleranceMax,
				Actual:       req.Actual,
				Verdict:      verdict,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		} else {
			line, err = lines.FindByID(req.ID)
			if err != nil {
				return err
			}
			if line.ChecksheetID != sheet.ID {
				return policy.ErrNotFound
			}
			line.Name = req.Name
			line.Nominal = req.Nominal
			line.ToleranceMin = req.ToleranceMin
			line.ToleranceMax = req.ToleranceMax
			line.Actual = req.Actual
			line.Verdict = verdict
			line.UpdatedAt = now
		}

		if err := lines.Save(line); err != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, err)
		}
		return touchParent(tx, sheet)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordVerdict(string(verdict))

	if s.auditLogSvc != nil {
		action := "update"
		if req.ID == "" {
			action = "create"
		}
		details := map[string]interface{}{"checksheet_id": checksheetID, "actual": req.Actual, "verdict": verdict}
		_ = s.auditLogSvc.RecordAction(ctx, actor, action, "measurement_line", line.ID, details)
	}

	return line, nil
}

// DeleteMeasurement 软删除测量行
func (s *lineService) DeleteMeasurement(ctx context.Context, actor policy.Actor, lineID string) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines := repository.NewMeasurementLineRepository(tx)
		line, err := lines.FindByID(lineID)
		if err != nil {
			return err
		}

		sheet, err := resolveParent(tx, actor, line.ChecksheetID, policy.VariantDIR)
		if err != nil {
			return err
		}
		if err := lines.SoftDelete(line.ID); err != nil {
			return err
		}
		return touchParent(tx, sheet)
	})
	if err != nil {
		return err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor, "delete", "measurement_line", lineID, nil)
	}

	return nil
}

// BulkAddMeasurements 批量新增测量行
// 全有或全无: 任何一行校验失败都不会落盘
func (s *lineService) BulkAddMeasurements(ctx context.Context, actor policy.Actor, checksheetID string, inputs []*MeasurementInput) ([]*model.MeasurementLineModel, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no lines to add", policy.ErrInvalidInput)
	}

	// 1. 先校验全部输入,任何写入发生之前就失败
	now := time.Now()
	lines := make([]*model.MeasurementLineModel, 0, len(inputs))
	for i, input := range inputs {
		if err := utils.ValidateItemName(input.Name); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", policy.ErrInvalidInput, i, err)
		}
		verdict, err := policy.EvaluateTolerance(input.Actual, input.ToleranceMin, input.ToleranceMax)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, &model.MeasurementLineModel{
			ID:           uuid.New().String(),
			ChecksheetID: checksheetID,
			Name:         input.Name,
			Nominal:      input.Nominal,
			ToleranceMin: input.ToleranceMin,
			ToleranceMax: input.ToleranceMax,
			Actual:       input.Actual,
			Verdict:      verdict,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	// 2. 单事务写入
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sheet, err := resolveParent(tx, actor, checksheetID, policy.VariantDIR)
		if err != nil {
			return err
		}
		if err := repository.NewMeasurementLineRepository(tx).SaveAll(lines); err != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, err)
		}
		return touchParent(tx, sheet)
	})
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		metrics.RecordVerdict(string(line.Verdict))
	}

	if s.auditLogSvc != nil {
		details := map[string]interface{}{"checksheet_id": checksheetID, "count": len(lines)}
		_ = s.auditLogSvc.RecordAction(ctx, actor, "bulk_create", "measurement_line", checksheetID, details)
	}

	return lines, nil
}

// SaveInspectionLine 新建或更新终检行
func (s *lineService) SaveInspectionLine(ctx context.Context, actor policy.Actor, checksheetID string, req *SaveInspectionLineRequest) (*model.InspectionLineModel, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateItemName(req.ItemName); err != nil {
		return nil, fmt.Errorf("%w: %v", policy.ErrInvalidInput, err)
	}
	result, err := policy.ParseInspectionResult(req.Result)
	if err != nil {
		return nil, err
	}

	var line *model.InspectionLineModel
	err = s.db.Transaction(func(tx *gorm.DB) error {
		sheet, err := resolveParent(tx, actor, checksheetID, policy.VariantFI)
		if err != nil {
			return err
		}

		lines := repository.NewInspectionLineRepository(tx)
		now := time.Now()
		if req.ID == "" {
			line = &model.InspectionLineModel{
				ID:           uuid.New().String(),
				ChecksheetID: sheet.ID,
				ItemName:     req.ItemName,
				Result:       result,
				Remark:       req.Remark,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		} else {
			line, err = lines.FindByID(req.ID)
			if err != nil {
				return err
			}
			if line.ChecksheetID != sheet.ID {
				return policy.ErrNotFound
			}
			line.ItemName = req.ItemName
			line.Result = result
			line.Remark = req.Remark
			line.UpdatedAt = now
		}

		if err := lines.Save(line); err != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, err)
		}
		return touchParent(tx, sheet)
	})
	if err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		action := "update"
		if req.ID == "" {
			action = "create"
		}
		details := map[string]interface{}{"checksheet_id": checksheetID, "result": result}
		_ = s.auditLogSvc.RecordAction(ctx, actor, action, "inspection_line", line.ID, details)
	}

	return line, nil
}

// DeleteInspectionLine 软删除终检行
func (s *lineService) DeleteInspectionLine(ctx context.Context, actor policy.Actor, lineID string) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines := repository.NewInspectionLineRepository(tx)
		line, err := lines.FindByID(lineID)
		if err != nil {
			return err
		}

		sheet, err := resolveParent(tx, actor, line.ChecksheetID, policy.VariantFI)
		if err != nil {
			return err
		}
		if err := lines.SoftDelete(line.ID); err != nil {
			return err
		}
		return touchParent(tx, sheet)
	})
	if err != nil {
		return err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor, "delete", "inspection_line", lineID, nil)
	}

	return nil
}

// BulkAddInspectionLines 批量新增终检行,全有或全无
func (s *lineService) BulkAddInspectionLines(ctx context.Context, actor policy.Actor, checksheetID string, inputs []*InspectionLineInput) ([]*model.InspectionLineModel, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no lines to add", policy.ErrInvalidInput)
	}

	now := time.Now()
	lines := make([]*model.InspectionLineModel, 0, len(inputs))
	for i, input := range inputs {
		if err := utils.ValidateItemName(input.ItemName); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", policy.ErrInvalidInput, i, err)
		}
		result, err := policy.ParseInspectionResult(input.Result)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, &model.InspectionLineModel{
			ID:           uuid.New().String(),
			ChecksheetID: checksheetID,
			ItemName:     input.ItemName,
			Result:       result,
			Remark:       input.Remark,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sheet, err := resolveParent(tx, actor, checksheetID, policy.VariantFI)
		if err != nil {
			return err
		}
		if err := repository.NewInspectionLineRepository(tx).SaveAll(lines); err != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, err)
		}
		return touchParent(tx, sheet)
	})
	if err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		details := map[string]interface{}{"checksheet_id": checksheetID, "count": len(lines)}
		_ = s.auditLogSvc.RecordAction(ctx, actor, "bulk_create", "inspection_line", checksheetID, details)
	}

	return lines, nil
}
