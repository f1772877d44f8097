package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/checksheet-gin/internal/auth"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/mautops/checksheet-gin/internal/utils"
	"github.com/mautops/checksheet-gin/internal/websocket"
)

// ChecksheetController 检查表控制器
type ChecksheetController struct {
	checksheetService service.ChecksheetService
	hub               *websocket.Hub
}

// NewChecksheetController 创建检查表控制器
func NewChecksheetController(checksheetService service.ChecksheetService, hub *websocket.Hub) *ChecksheetController {
	return &ChecksheetController{
		checksheetService: checksheetService,
		hub:               hub,
	}
}

// validateChecksheetID 验证检查表 ID 并返回错误响应（如果无效）
func (c *ChecksheetController) validateChecksheetID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateChecksheetID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid checksheet ID", err.Error())
		return false
	}
	return true
}

// Create 创建检查表
func (c *ChecksheetController) Create(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	var req service.CreateChecksheetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	sheet, err := c.checksheetService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		RespondError(ctx, err, "create checksheet")
		return
	}

	Success(ctx, sheet)
}

// Get 获取检查表详情
func (c *ChecksheetController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateChecksheetID(ctx, id) {
		return
	}

	sheet, err := c.checksheetService.Get(id)
	if err != nil {
		RespondError(ctx, err, "get checksheet")
		return
	}

	Success(ctx, sheet)
}

// Update 更新检查表字段
func (c *ChecksheetController) Update(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	id := ctx.Param("id")
	if !c.validateChecksheetID(ctx, id) {
		return
	}

	var req service.UpdateChecksheetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	sheet, err := c.checksheetService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		RespondError(ctx, err, "update checksheet")
		return
	}

	Success(ctx, sheet)
}

// Delete 删除检查表
func (c *ChecksheetController) Delete(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	id := ctx.Param("id")
	if !c.validateChecksheetID(ctx, id) {
		return
	}

	if err := c.checksheetService.Delete(ctx.Request.Context(), actor, id); err != nil {
		RespondError(ctx, err, "delete checksheet")
		return
	}

	Success(ctx, nil)
}

// Transition 状态流转
func (c *ChecksheetController) Transition(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	id := ctx.Param("id")
	if !c.validateChecksheetID(ctx, id) {
		return
	}

	var req service.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := c.checksheetService.Transition(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		RespondError(ctx, err, "transition checksheet")
		return
	}

	// 推送状态变更事件,他人操作时额外通知拥有者
	if c.hub != nil {
		event := websocket.StatusEvent{
			ChecksheetID: result.Checksheet.ID,
			SerialNumber: result.Checksheet.SerialNumber,
			Variant:      string(result.Checksheet.Variant),
			FromStatus:   string(result.FromStatus),
			ToStatus:     string(result.Checksheet.Status),
			ChangedBy:    actor.UserID,
			Timestamp:    time.Now(),
		}
		c.hub.BroadcastStatusEvent(event)
		if result.Checksheet.OwnerID != actor.UserID {
			c.hub.NotifyOwner(result.Checksheet.OwnerID, event)
		}
	}

	Success(ctx, gin.H{
		"checksheet":      result.Checksheet,
		"from_status":     result.FromStatus,
		"approval_record": result.ApprovalRecord,
		"revision_record": result.RevisionRecord,
	})
}
