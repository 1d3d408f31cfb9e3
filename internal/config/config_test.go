package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, def.Pricing.FreeDeliveryThreshold, cfg.Pricing.FreeDeliveryThreshold)
	assert.Equal(t, def.JWT.Secret, cfg.JWT.Secret)
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9090\npricing:\n  deliveryfee: 5000\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(5000), cfg.Pricing.DeliveryFee)
	// 未覆盖的字段保持默认
	assert.Equal(t, DefaultConfig().Redis.Addr, cfg.Redis.Addr)
}

func TestLoadBrokenFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [broken"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestAddrDefaultsHost(t *testing.T) {
	s := ServerConfig{Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", s.Addr())
}
