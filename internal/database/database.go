package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/checksheet-gin/internal/config"
	"github.com/mautops/checksheet-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取默认连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库并配置连接池
// 连接池参数优先取配置值,未设置的字段回落到默认值
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pool.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry 带重试的数据库连接,指数退避
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动建表
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		if err := db.AutoMigrate(
			&model.ChecksheetModel{},
			&model.MeasurementLineModel{},
			&model.InspectionLineModel{},
			&model.ApprovalRecordModel{},
			&model.RevisionRecordModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动建表(用 TEXT 替代 jsonb)
func createSQLiteTables(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS checksheets (
			id VARCHAR(64) PRIMARY KEY,
			variant VARCHAR(8) NOT NULL,
			serial_number VARCHAR(64) NOT NULL,
			owner_id VARCHAR(64) NOT NULL,
			status VARCHAR(16) NOT NULL,
			remark TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create checksheets table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS measurement_lines (
			id VARCHAR(64) PRIMARY KEY,
			checksheet_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			nominal REAL NOT NULL,
			tolerance_min REAL NOT NULL,
			tolerance_max REAL NOT NULL,
			actual REAL NOT NULL,
			verdict VARCHAR(4) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create measurement_lines table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS inspection_lines (
			id VARCHAR(64) PRIMARY KEY,
			checksheet_id VARCHAR(64) NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			result VARCHAR(16) NOT NULL,
			remark TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create inspection_lines table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS approval_records (
			id VARCHAR(64) PRIMARY KEY,
			reference_type VARCHAR(8) NOT NULL,
			reference_id VARCHAR(64) NOT NULL,
			approved_by VARCHAR(64) NOT NULL,
			note TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create approval_records table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS revision_records (
			id VARCHAR(64) PRIMARY KEY,
			reference_type VARCHAR(8) NOT NULL,
			reference_id VARCHAR(64) NOT NULL,
			revision_number INTEGER NOT NULL,
			note TEXT,
			revised_by VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create revision_records table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			user_role VARCHAR(16) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// checksheets 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_checksheets_owner ON checksheets(owner_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_checksheets_owner: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_checksheets_variant_status ON checksheets(variant, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_checksheets_variant_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_checksheets_created_at ON checksheets(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_checksheets_created_at: %w", err)
	}
	// 序列号在同类型未删除记录中唯一,部分索引兜底服务层的预检
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_checksheets_serial ON checksheets(variant, serial_number) WHERE deleted_at IS NULL").Error; err != nil {
		return fmt.Errorf("failed to create idx_checksheets_serial: %w", err)
	}

	// 行项目表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_measurement_lines_sheet ON measurement_lines(checksheet_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_measurement_lines_sheet: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_inspection_lines_sheet ON inspection_lines(checksheet_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_inspection_lines_sheet: %w", err)
	}

	// approval_records 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_reference ON approval_records(reference_type, reference_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_reference: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_approved_by ON approval_records(approved_by)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_approved_by: %w", err)
	}

	// revision_records 表索引
	// 唯一索引保证同一检查表的修订号不重号,并发退回时第二个写入者会收到冲突
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_revisions_sequence ON revision_records(reference_type, reference_id, revision_number)").Error; err != nil {
		return fmt.Errorf("failed to create idx_revisions_sequence: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_revisions_revised_by ON revision_records(revised_by)").Error; err != nil {
		return fmt.Errorf("failed to create idx_revisions_revised_by: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_details_gin ON audit_logs USING GIN (details)").Error; err != nil {
			return fmt.Errorf("failed to create idx_audit_details_gin: %w", err)
		}
	}

	return nil
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
