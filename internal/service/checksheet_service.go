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

// ChecksheetService 检查表生命周期服务接口
// 每个操作对调用方而言都是事务性的:要么全部生效,要么毫无痕迹
type ChecksheetService interface {
	Create(ctx context.Context, actor policy.Actor, req *CreateChecksheetRequest) (*model.ChecksheetModel, error)
	Get(id string) (*model.ChecksheetModel, error)
	Update(ctx context.Context, actor policy.Actor, id string, req *UpdateChecksheetRequest) (*model.ChecksheetModel, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
	Transition(ctx context.Context, actor policy.Actor, id string, req *TransitionRequest) (*TransitionResult, error)
}

// CreateChecksheetRequest 创建检查表请求
type CreateChecksheetRequest struct {
	Variant      string `json:"variant" binding:"required"`       // 检查表类型: dir/fi
	SerialNumber string `json:"serial_number" binding:"required"` // 序列号/单号
	Remark       string `json:"remark"`
}

// UpdateChecksheetRequest 更新检查表字段请求
// 为 nil 的字段不修改
type UpdateChecksheetRequest struct {
	SerialNumber *string `json:"serial_number"`
	Remark       *string `json:"remark"`
}

// TransitionRequest 状态流转请求
type TransitionRequest struct {
	Status string `json:"status" binding:"required"` // 目标状态
	Note   string `json:"note"`                      // 审批意见或修订原因
}

// TransitionResult 状态流转结果
type TransitionResult struct {
	Checksheet     *model.ChecksheetModel
	FromStatus     policy.Status
	ApprovalRecord *model.ApprovalRecordModel // 进入 approved 时追加的审批记录
	RevisionRecord *model.RevisionRecordModel // 退出 approved 时追加的修订记录
}

// checksheetService 检查表生命周期服务实现
type checksheetService struct {
	db          *gorm.DB
	auditLogSvc AuditLogService
}

// NewChecksheetService 创建检查表服务
func NewChecksheetService(db *gorm.DB, auditLogSvc AuditLogService) ChecksheetService {
	return &checksheetService{
		db:          db,
		auditLogSvc: auditLogSvc,
	}
}

// Create 创建检查表
// 只有检验员可以创建;序列号在同类型未删除记录中必须唯一
func (s *checksheetService) Create(ctx context.Context, actor policy.Actor, req *CreateChecksheetRequest) (*model.ChecksheetModel, error) {
	// 1. 校验调用者和参数
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if d := policy.AuthorizeCreate(actor); !d.Allowed {
		return nil, d.Reason
	}
	variant, err := policy.ParseVariant(req.Variant)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateSerialNumber(req.SerialNumber); err != nil {
		return nil, fmt.Errorf("%w: %s", policy.ErrInvalidInput, err.Error())
	}

	// 2. 事务内检查唯一性并写入
	now := time.Now()
	sheet := &model.ChecksheetModel{
		ID:           uuid.New().String(),
		Variant:      variant,
		SerialNumber: req.SerialNumber,
		OwnerID:      actor.UserID,
		Status:       policy.StatusPending,
		Remark:       req.Remark,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		sheets := repository.NewChecksheetRepository(tx)
		taken, err := sheets.SerialTaken(variant, req.SerialNumber, "")
		if err != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, err)
		}
		if taken {
			return fmt.Errorf("%w: serial number %q already exists for variant %s", policy.ErrConflict, req.SerialNumber, variant)
		}
		if err := tx.Create(sheet).Error; err != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordChecksheetCreated(string(variant))

	// 3. 记录审计日志
	if s.auditLogSvc != nil {
		details := map[string]string{"variant": string(variant), "serial_number": req.SerialNumber}
		_ = s.auditLogSvc.RecordAction(ctx, actor, "create", "checksheet", sheet.ID, details)
	}

	return sheet, nil
}

// Get 获取检查表详情
func (s *checksheetService) Get(id string) (*model.ChecksheetModel, error) {
	return repository.NewChecksheetRepository(s.db).FindByID(id)
}

// Update 更新检查表字段
// 所有权检查和状态检查在同一个事务里完成,写入用读到的状态做条件,
// 状态在读与写之间被并发修改时返回冲突而不是带着过期授权落盘
func (s *checksheetService) Update(ctx context.Context, actor policy.Actor, id string, req *UpdateChecksheetRequest) (*model.ChecksheetModel, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if req.SerialNumber != nil {
		if err := utils.ValidateSerialNumber(*req.SerialNumber); err != nil {
			return nil, fmt.Errorf("%w: %s", policy.ErrInvalidInput, err.Error())
		}
	}

	var updated *model.ChecksheetModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sheets := repository.NewChecksheetRepository(tx)

		// 1. 读取并授权
		sheet, err := sheets.FindByID(id)
		if err != nil {
			return err
		}
		if d := policy.AuthorizeMutation(actor, sheet.OwnerID); !d.Allowed {
			return d.Reason
		}
		if d := policy.AuthorizeEdit(actor, sheet.Status); !d.Allowed {
			return d.Reason
		}

		// 2. 序列号变更时重新校验唯一性
		updates := map[string]interface{}{"updated_at": time.Now()}
		if req.SerialNumber != nil && *req.SerialNumber != sheet.SerialNumber {
			taken, err := sheets.SerialTaken(sheet.Variant, *req.SerialNumber, sheet.ID)
			if err != nil {
				return fmt.Errorf("%w: %v", policy.ErrStorage, err)
			}
			if taken {
				return fmt.Errorf("%w: serial number %q already exists for variant %s", policy.ErrConflict, *req.SerialNumber, sheet.Variant)
			}
			updates["serial_number"] = *req.SerialNumber
		}
		if req.Remark != nil {
			updates["remark"] = *req.Remark
		}

		// 3. 条件写入: 状态自读取以来未变才生效
		result := tx.Model(&model.ChecksheetModel{}).
			Where("id = ? AND status = ? AND deleted_at IS NULL", sheet.ID, sheet.Status).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: checksheet was modified concurrently", policy.ErrConflict)
		}

		updated, err = sheets.FindByID(sheet.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor, "update", "checksheet", id, req)
	}

	return updated, nil
}

// Delete 软删除检查表
// 行项目不级联标记,父记录删除后它们自然不可达
func (s *checksheetService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sheets := repository.NewChecksheetRepository(tx)

		sheet, err := sheets.FindByID(id)
		if err != nil {
			return err
		}
		if d := policy.AuthorizeMutation(actor, sheet.OwnerID); !d.Allowed {
			return d.Reason
		}
		if d := policy.AuthorizeDelete(actor, sheet.Status); !d.Allowed {
			return d.Reason
		}

		now := time.Now()
		result := tx.Model(&model.ChecksheetModel{}).
			Where("id = ? AND status = ? AND deleted_at IS NULL", sheet.ID, sheet.Status).
			Update("deleted_at", &now)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: checksheet was modified concurrently", policy.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor, "delete", "checksheet", id, nil)
	}

	return nil
}

// Transition 状态流转
// 进入 approved 时追加审批记录;从 approved 退回时在同一事务里
// 取下一个修订号并追加修订记录,唯一索引兜底并发产生的重号
func (s *checksheetService) Transition(ctx context.Context, actor policy.Actor, id string, req *TransitionRequest) (*TransitionResult, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	target, err := policy.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	// 审批意见入台账前规整,空意见保持为空
	if req.Note != "" {
		note, err := utils.TrimAndValidate(req.Note, 1024)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid note: %v", policy.ErrInvalidInput, err)
		}
		req.Note = note
	}

	var result TransitionResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		sheets := repository.NewChecksheetRepository(tx)

		// 1. 读取并授权
		sheet, err := sheets.FindByID(id)
		if err != nil {
			return err
		}
		effect, decision := policy.AuthorizeTransition(actor, sheet.Status, target)
		if !decision.Allowed {
			return decision.Reason
		}
		result.FromStatus = sheet.Status

		// 2. 条件更新状态
		update := tx.Model(&model.ChecksheetModel{}).
			Where("id = ? AND status = ? AND deleted_at IS NULL", sheet.ID, sheet.Status).
			Updates(map[string]interface{}{"status": target, "updated_at": time.Now()})
		if update.Error != nil {
			return fmt.Errorf("%w: %v", policy.ErrStorage, update.Error)
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("%w: checksheet status changed concurrently", policy.ErrConflict)
		}

		// 3. 记账
		if effect.AppendApproval {
			record := &model.ApprovalRecordModel{
				ID:            uuid.New().String(),
				ReferenceType: sheet.Variant,
				ReferenceID:   sheet.ID,
				ApprovedBy:    actor.UserID,
				Note:          req.Note,
				CreatedAt:     time.Now(),
			}
			if err := repository.NewApprovalRecordRepository(tx).Save(record); err != nil {
				return fmt.Errorf("%w: %v", policy.ErrStorage, err)
			}
			result.ApprovalRecord = record
		}
		if effect.AppendRevision {
			revisions := repository.NewRevisionRecordRepository(tx)
			number, err := revisions.NextNumber(sheet.Variant, sheet.ID)
			if err != nil {
				return fmt.Errorf("%w: %v", policy.ErrStorage, err)
			}
			record := &model.RevisionRecordModel{
				ID:             uuid.New().String(),
				ReferenceType:  sheet.Variant,
				ReferenceID:    sheet.ID,
				RevisionNumber: number,
				Note:           req.Note,
				RevisedBy:      actor.UserID,
				CreatedAt:      time.Now(),
			}
			if err := revisions.Save(record); err != nil {
				return fmt.Errorf("%w: %v", policy.ErrStorage, err)
			}
			result.RevisionRecord = record
		}

		result.Checksheet, err = sheets.FindByID(sheet.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(string(result.FromStatus), string(target))

	if s.auditLogSvc != nil {
		details := map[string]string{"from": string(result.FromStatus), "to": string(target), "note": req.Note}
		_ = s.auditLogSvc.RecordAction(ctx, actor, "transition", "checksheet", id, details)
	}

	return &result, nil
}
