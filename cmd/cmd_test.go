package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderConfigMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.JWT.SecretKey = "jwt-secret"
	cfg.Database.Password = "db-password"
	cfg.Database.DSN = "postgres://user:db-password@db/social"
	cfg.Redis.Password = ""

	out, err := renderConfig(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "jwt-secret")
	assert.NotContains(t, out, "db-password")

	var parsed config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, secretMask, parsed.JWT.SecretKey)
	assert.Equal(t, secretMask, parsed.Database.DSN)
	assert.Empty(t, parsed.Redis.Password)
	assert.Equal(t, cfg.App.Port, parsed.App.Port)

	// 原配置不受影响
	assert.Equal(t, "jwt-secret", cfg.JWT.SecretKey)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.Contains(buf.String(), Version))
	assert.Contains(t, buf.String(), Platform)
}
