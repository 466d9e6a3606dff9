package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	previous := GlobalConfig
	previousViper := viperInstance
	t.Cleanup(func() {
		GlobalConfig = previous
		viperInstance = previousViper
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.App.Mode = "release"
	assert.Error(t, cfg.Validate())
	cfg.JWT.SecretKey = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestInitWithoutConfigFile(t *testing.T) {
	restoreGlobal(t)
	t.Setenv("APP_PORT", "8088")

	require.NoError(t, Init(t.TempDir()))
	assert.Equal(t, 8088, GlobalConfig.App.Port)
	assert.Equal(t, "social-api", GlobalConfig.App.Name)
	assert.Equal(t, "sqlite", GlobalConfig.Database.Driver)
	assert.Equal(t, 30, GlobalConfig.Cron.RetentionDays)
}

func TestInitFromFile(t *testing.T) {
	restoreGlobal(t)
	dir := t.TempDir()
	content := `
app:
  mode: release
  port: 4000
database:
  driver: postgres
  host: db
jwt:
  secret_key: from-file
content:
  sensitive_words: ["spam"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Setenv("JWT_SECRET_KEY", "from-env")

	require.NoError(t, Init(dir))
	assert.Equal(t, "release", GlobalConfig.App.Mode)
	assert.Equal(t, 4000, GlobalConfig.App.Port)
	assert.Equal(t, "postgres", GlobalConfig.Database.Driver)
	assert.Equal(t, "db", GlobalConfig.Database.Host)
	assert.Equal(t, "from-env", GlobalConfig.JWT.SecretKey)
	assert.Equal(t, []string{"spam"}, GlobalConfig.Content.SensitiveWords)
	// 文件中没有的字段使用默认值
	assert.Equal(t, 20, GlobalConfig.RateLimit.Burst)
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	restoreGlobal(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  driver: oracle\n"), 0o644))

	before := GlobalConfig
	assert.Error(t, Init(dir))
	assert.Same(t, before, GlobalConfig)
}
