package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mautops/checksheet-gin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault 测试默认配置
func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "checksheet", cfg.Database.DBName)
	assert.Equal(t, "checksheet-gin", cfg.Auth.Issuer)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.IsProduction())
}

// TestLoadFromFile 测试从配置文件加载
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
server:
  host: 127.0.0.1
  port: 9090
database:
  host: db.internal
  dbname: checksheet_prod
auth:
  issuer: qa-gateway
  secret: test-secret
log:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "checksheet_prod", cfg.Database.DBName)
	assert.Equal(t, "qa-gateway", cfg.Auth.Issuer)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	assert.Equal(t, "warn", cfg.Log.Level)

	// 未在文件中出现的字段回落到默认值
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
}

// TestLoadMissingFile 测试配置文件不存在时报错
func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestLoadEnvOverride 测试环境变量覆盖配置
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9999")
	t.Setenv("APP_AUTH_SECRET", "env-secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
}
