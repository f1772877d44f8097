package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/mautops/checksheet-gin/internal/utils"
)

// QueryController 检查表查询控制器
type QueryController struct {
	queryService service.QueryService
}

// NewQueryController 创建查询控制器
func NewQueryController(queryService service.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
	}
}

// List 分页查询检查表列表
func (c *QueryController) List(ctx *gin.Context) {
	var filter service.ListChecksheetsFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		// 绑定错误交给错误处理中间件统一响应
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	sheets, total, err := c.queryService.ListChecksheets(&filter)
	if err != nil {
		RespondError(ctx, err, "list checksheets")
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	totalPage := int((total + int64(pageSize) - 1) / int64(pageSize))

	Paginated(ctx, sheets, PaginationInfo{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// Lookup 按类型和序列号定位检查表
func (c *QueryController) Lookup(ctx *gin.Context) {
	variant := ctx.Query("variant")
	serial := ctx.Query("serial_number")

	sheet, err := c.queryService.GetChecksheetBySerial(variant, serial)
	if err != nil {
		RespondError(ctx, err, "lookup checksheet")
		return
	}

	Success(ctx, sheet)
}

// ApprovalsByApprover 查询某签核人的审批记录
func (c *QueryController) ApprovalsByApprover(ctx *gin.Context) {
	records, err := c.queryService.GetApprovalsByApprover(ctx.Query("approved_by"))
	if err != nil {
		RespondError(ctx, err, "get approvals by approver")
		return
	}

	Success(ctx, records)
}

// checksheetIDParam 解析并校验路径中的检查表 ID
func (c *QueryController) checksheetIDParam(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if err := utils.ValidateChecksheetID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid checksheet ID", err.Error())
		return "", false
	}
	return id, true
}

// Measurements 获取检查表的测量行
func (c *QueryController) Measurements(ctx *gin.Context) {
	id, ok := c.checksheetIDParam(ctx)
	if !ok {
		return
	}

	lines, err := c.queryService.GetMeasurements(id)
	if err != nil {
		RespondError(ctx, err, "get measurement lines")
		return
	}

	Success(ctx, lines)
}

// InspectionLines 获取检查表的终检行
func (c *QueryController) InspectionLines(ctx *gin.Context) {
	id, ok := c.checksheetIDParam(ctx)
	if !ok {
		return
	}

	lines, err := c.queryService.GetInspectionLines(id)
	if err != nil {
		RespondError(ctx, err, "get inspection lines")
		return
	}

	Success(ctx, lines)
}

// Approvals 获取检查表的审批记录
func (c *QueryController) Approvals(ctx *gin.Context) {
	id, ok := c.checksheetIDParam(ctx)
	if !ok {
		return
	}

	records, err := c.queryService.GetApprovals(id)
	if err != nil {
		RespondError(ctx, err, "get approval records")
		return
	}

	Success(ctx, records)
}

// Revisions 获取检查表的修订记录
func (c *QueryController) Revisions(ctx *gin.Context) {
	id, ok := c.checksheetIDParam(ctx)
	if !ok {
		return
	}

	records, err := c.queryService.GetRevisions(id)
	if err != nil {
		RespondError(ctx, err, "get revision records")
		return
	}

	Success(ctx, records)
}
