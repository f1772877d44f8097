package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mautops/checksheet-gin/internal/auth"
	"github.com/mautops/checksheet-gin/internal/config"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/mautops/checksheet-gin/internal/websocket"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	DB                *gorm.DB
	Config            *config.Config
	Validator         *auth.TokenValidator
	Hub               *websocket.Hub
	ChecksheetService service.ChecksheetService
	LineService       service.LineService
	QueryService      service.QueryService
	StatisticsService service.StatisticsService
}

// SetupRoutes 配置路由
func SetupRoutes(deps *RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(ErrorHandlerMiddleware())
	router.Use(VersionMiddleware())
	router.Use(SecurityHeadersMiddleware())
	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		router.Use(CORSMiddleware(deps.Config.CORS))
	}
	router.Use(RateLimitMiddleware(100, 200))

	// 健康检查
	healthController := NewHealthController(deps.DB, deps.Hub)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由
	if deps.Hub != nil && deps.Validator != nil {
		router.GET("/ws/checksheets", websocket.WebSocketHandler(deps.Hub, deps.Validator))
	}

	// 控制器
	checksheetController := NewChecksheetController(deps.ChecksheetService, deps.Hub)
	lineController := NewLineController(deps.LineService)
	queryController := NewQueryController(deps.QueryService)
	statisticsController := NewStatisticsController(deps.StatisticsService)

	// API v1 路由组,所有业务端点要求携带身份令牌
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(deps.Validator))
	{
		// 检查表生命周期路由
		checksheets := v1.Group("/checksheets")
		{
			checksheets.POST("", checksheetController.Create)
			checksheets.GET("", queryController.List)
			checksheets.GET("/lookup", queryController.Lookup)
			checksheets.GET("/:id", checksheetController.Get)
			checksheets.PUT("/:id", checksheetController.Update)
			checksheets.DELETE("/:id", checksheetController.Delete)
			checksheets.POST("/:id/transition", checksheetController.Transition)

			// 测量行(DIR)
			checksheets.GET("/:id/measurements", queryController.Measurements)
			checksheets.POST("/:id/measurements", lineController.SaveMeasurement)
			checksheets.POST("/:id/measurements/bulk", lineController.BulkAddMeasurements)

			// 终检行(FI)
			checksheets.GET("/:id/inspections", queryController.InspectionLines)
			checksheets.POST("/:id/inspections", lineController.SaveInspectionLine)
			checksheets.POST("/:id/inspections/bulk", lineController.BulkAddInspectionLines)

			// 台账
			checksheets.GET("/:id/approvals", queryController.Approvals)
			checksheets.GET("/:id/revisions", queryController.Revisions)
		}

		// 行项目直接删除路由
		v1.DELETE("/measurements/:lineId", lineController.DeleteMeasurement)
		v1.DELETE("/inspections/:lineId", lineController.DeleteInspectionLine)

		// 按签核人查审批台账
		v1.GET("/approvals", queryController.ApprovalsByApprover)

		// 统计路由
		statistics := v1.Group("/statistics")
		{
			statistics.GET("/status", statisticsController.ByStatus)
			statistics.GET("/variant", statisticsController.ByVariant)
			statistics.GET("/verdicts", statisticsController.Verdicts)
			statistics.GET("/ledgers", statisticsController.Ledgers)
		}
	}

	return router
}
