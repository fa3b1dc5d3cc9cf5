package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/quickdiff/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultsWhenNoFileExists(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadReadsFileOverridingDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "theme: light\ncontext_lines: 5\nmetrics: true\neditor: nvim\npr_fetch_limit: 50\ngh_timeout: 10s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 5, cfg.ContextLines)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "nvim", cfg.Editor)
	assert.Equal(t, 50, cfg.PRFetchLimit)
	assert.Equal(t, 10*time.Second, cfg.GhTimeout)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("theme: [this is not valid: yaml"), 0o644))

	_, err := config.Load(dir)
	require.Error(t, err)
}

func TestDefaultConfigDirHonorsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, filepath.Join("/tmp/xdgtest", "quickdiff"), config.DefaultConfigDir())
}
