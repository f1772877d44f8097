package container

import (
	"fmt"
	"time"

	"github.com/mautops/checksheet-gin/internal/auth"
	"github.com/mautops/checksheet-gin/internal/config"
	"github.com/mautops/checksheet-gin/internal/database"
	"github.com/mautops/checksheet-gin/internal/metrics"
	"github.com/mautops/checksheet-gin/internal/repository"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/mautops/checksheet-gin/internal/websocket"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、服务、WebSocket Hub 等
type Container struct {
	cfg               *config.Config
	db                *gorm.DB
	validator         *auth.TokenValidator
	hub               *websocket.Hub
	collector         *metrics.Collector
	auditLogService   service.AuditLogService
	checksheetService service.ChecksheetService
	lineService       service.LineService
	queryService      service.QueryService
	statisticsService service.StatisticsService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移,迁移内部会创建索引
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化 Token 验证器
	validator := auth.NewTokenValidator(cfg.Auth.Issuer, cfg.Auth.Secret)

	// 3. 初始化 WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// 4. 初始化服务层
	auditLogService := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	checksheetService := service.NewChecksheetService(db, auditLogService)
	lineService := service.NewLineService(db, auditLogService)
	queryService := service.NewQueryService(db)
	statisticsService := service.NewStatisticsService(db)

	// 5. 启动指标收集器,每 30 秒刷新一次
	collector := metrics.NewCollector(db, 30*time.Second)
	collector.Start()

	return &Container{
		cfg:               cfg,
		db:                db,
		validator:         validator,
		hub:               hub,
		collector:         collector,
		auditLogService:   auditLogService,
		checksheetService: checksheetService,
		lineService:       lineService,
		queryService:      queryService,
		statisticsService: statisticsService,
	}, nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Validator 获取 Token 验证器
func (c *Container) Validator() *auth.TokenValidator {
	return c.validator
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogService
}

// ChecksheetService 获取检查表生命周期服务
func (c *Container) ChecksheetService() service.ChecksheetService {
	return c.checksheetService
}

// LineService 获取行项目服务
func (c *Container) LineService() service.LineService {
	return c.lineService
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.queryService
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
