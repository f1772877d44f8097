package metrics

import (
	"context"
	"time"

	"github.com/mautops/checksheet-gin/internal/database"
	"gorm.io/gorm"
)

// Collector 指标收集器
// 定期刷新数据库连接池和检查表状态分布指标
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !database.CheckHealth(c.db) {
				continue
			}
			_ = UpdateDatabaseConnections(c.db)
			c.updateStatusDistribution()
		}
	}
}

// updateStatusDistribution 刷新检查表状态分布
func (c *Collector) updateStatusDistribution() {
	var results []struct {
		Status string
		Count  int64
	}
	err := c.db.Table("checksheets").
		Select("status, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return
	}
	for _, r := range results {
		UpdateChecksheetsByStatus(r.Status, float64(r.Count))
	}
}
