package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mautops/checksheet-gin/internal/service"
)

// StatisticsController 统计控制器
type StatisticsController struct {
	statisticsService service.StatisticsService
}

// NewStatisticsController 创建统计控制器
func NewStatisticsController(statisticsService service.StatisticsService) *StatisticsController {
	return &StatisticsController{
		statisticsService: statisticsService,
	}
}

// ByStatus 按状态统计检查表数量
func (c *StatisticsController) ByStatus(ctx *gin.Context) {
	stats, err := c.statisticsService.GetChecksheetStatisticsByStatus()
	if err != nil {
		RespondError(ctx, err, "get status statistics")
		return
	}

	Success(ctx, stats)
}

// ByVariant 按类型统计检查表数量
func (c *StatisticsController) ByVariant(ctx *gin.Context) {
	stats, err := c.statisticsService.GetChecksheetStatisticsByVariant()
	if err != nil {
		RespondError(ctx, err, "get variant statistics")
		return
	}

	Success(ctx, stats)
}

// Verdicts 测量判定结果统计
func (c *StatisticsController) Verdicts(ctx *gin.Context) {
	stats, err := c.statisticsService.GetVerdictStatistics()
	if err != nil {
		RespondError(ctx, err, "get verdict statistics")
		return
	}

	Success(ctx, stats)
}

// Ledgers 审批与修订台账统计
func (c *StatisticsController) Ledgers(ctx *gin.Context) {
	stats, err := c.statisticsService.GetLedgerStatistics()
	if err != nil {
		RespondError(ctx, err, "get ledger statistics")
		return
	}

	Success(ctx, stats)
}
