package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaelang/vael/internal/config"
)

func TestLoadWorkspaceConfigMissingFileIsNotError(t *testing.T) {
	cfg, err := config.LoadWorkspaceConfig(filepath.Join(t.TempDir(), "vael.yaml"))
	require.NoError(t, err)
	require.Equal(t, &config.WorkspaceConfig{}, cfg)
}

func TestLoadWorkspaceConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vael.yaml")
	content := "log_level: debug\njobs: 4\nfail_fast: true\nsearch_path:\n  - ./lib\n  - ./vendor\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadWorkspaceConfig(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 4, cfg.Jobs)
	require.True(t, cfg.FailFast)
	require.Equal(t, []string{"./lib", "./vendor"}, cfg.SearchPath)
}

func TestLoadWorkspaceConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vael.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: [this is not an int"), 0o644))

	_, err := config.LoadWorkspaceConfig(path)
	require.Error(t, err)
}
