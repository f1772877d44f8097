package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/checksheet-gin/internal/auth"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/mautops/checksheet-gin/internal/utils"
)

// LineController 检查表行项目控制器
// 测量行挂在 DIR 检查表下,终检行挂在 FI 检查表下
type LineController struct {
	lineService service.LineService
}

// NewLineController 创建行项目控制器
func NewLineController(lineService service.LineService) *LineController {
	return &LineController{
		lineService: lineService,
	}
}

// SaveMeasurement 新增或更新测量行
func (c *LineController) SaveMeasurement(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	checksheetID := ctx.Param("id")
	if err := utils.ValidateChecksheetID(checksheetID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid checksheet ID", err.Error())
		return
	}

	var req service.SaveMeasurementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	line, err := c.lineService.SaveMeasurement(ctx.Request.Context(), actor, checksheetID, &req)
	if err != nil {
		RespondError(ctx, err, "save measurement line")
		return
	}

	Success(ctx, line)
}

// DeleteMeasurement 删除测量行
func (c *LineController) DeleteMeasurement(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	lineID := ctx.Param("lineId")
	if err := utils.ValidateChecksheetID(lineID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid line ID", err.Error())
		return
	}

	if err := c.lineService.DeleteMeasurement(ctx.Request.Context(), actor, lineID); err != nil {
		RespondError(ctx, err, "delete measurement line")
		return
	}

	Success(ctx, nil)
}

// BulkAddMeasurements 批量新增测量行
// 全部输入校验通过后才写入,任一行失败则整体回滚
func (c *LineController) BulkAddMeasurements(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	checksheetID := ctx.Param("id")
	if err := utils.ValidateChecksheetID(checksheetID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid checksheet ID", err.Error())
		return
	}

	var inputs []*service.MeasurementInput
	if err := ctx.ShouldBindJSON(&inputs); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if len(inputs) == 0 {
		Error(ctx, http.StatusBadRequest, "invalid request", "empty input list")
		return
	}

	lines, err := c.lineService.BulkAddMeasurements(ctx.Request.Context(), actor, checksheetID, inputs)
	if err != nil {
		RespondError(ctx, err, "bulk add measurement lines")
		return
	}

	Success(ctx, lines)
}

// SaveInspectionLine 新增或更新终检行
func (c *LineController) SaveInspectionLine(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	checksheetID := ctx.Param("id")
	if err := utils.ValidateChecksheetID(checksheetID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid checksheet ID", err.Error())
		return
	}

	var req service.SaveInspectionLineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	line, err := c.lineService.SaveInspectionLine(ctx.Request.Context(), actor, checksheetID, &req)
	if err != nil {
		RespondError(ctx, err, "save inspection line")
		return
	}

	Success(ctx, line)
}

// DeleteInspectionLine 删除终检行
func (c *LineController) DeleteInspectionLine(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	lineID := ctx.Param("lineId")
	if err := utils.ValidateChecksheetID(lineID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid line ID", err.Error())
		return
	}

	if err := c.lineService.DeleteInspectionLine(ctx.Request.Context(), actor, lineID); err != nil {
		RespondError(ctx, err, "delete inspection line")
		return
	}

	Success(ctx, nil)
}

// BulkAddInspectionLines 批量新增终检行
func (c *LineController) BulkAddInspectionLines(ctx *gin.Context) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor identity")
		return
	}

	checksheetID := ctx.Param("id")
	if err := utils.ValidateChecksheetID(checksheetID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid checksheet ID", err.Error())
		return
	}

	var inputs []*service.InspectionLineInput
	if err := ctx.ShouldBindJSON(&inputs); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if len(inputs) == 0 {
		Error(ctx, http.StatusBadRequest, "invalid request", "empty input list")
		return
	}

	lines, err := c.lineService.BulkAddInspectionLines(ctx.Request.Context(), actor, checksheetID, inputs)
	if err != nil {
		RespondError(ctx, err, "bulk add inspection lines")
		return
	}

	Success(ctx, lines)
}
