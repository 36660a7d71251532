package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, ".ownmap", cfg.Output.Dir)
	assert.Equal(t, "cache.json", cfg.Output.CacheFile)
	assert.Equal(t, "report.html", cfg.Output.ReportFile)
	assert.Contains(t, cfg.Exclude.Dirs, "vendor")
	assert.Contains(t, cfg.Exclude.Dirs, "node_modules")
	assert.True(t, cfg.Scan.UsagesEnabled())
	assert.True(t, cfg.Scan.GitignoreEnabled())
	assert.True(t, cfg.History.IsEnabled())
	assert.Equal(t, 8, cfg.Scan.Workers)

	php, ok := cfg.Dialects["php"]
	require.True(t, ok)
	assert.True(t, php.IsEnabled())
	assert.Equal(t, []string{".php"}, php.Extensions)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ownmap.toml")
	content := `
version = 1

[output]
dir = "build/ownership"

[scan]
workers = 2
track_usages = false

[exclude]
dirs = ["vendor", "fixtures"]

[dialects.typescript]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "build/ownership", cfg.Output.Dir)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.False(t, cfg.Scan.UsagesEnabled())
	assert.Equal(t, []string{"vendor", "fixtures"}, cfg.Exclude.Dirs)
	assert.False(t, cfg.Dialects["typescript"].IsEnabled())
	// Defaults still fill the untouched dialects.
	assert.Equal(t, []string{".php"}, cfg.Dialects["php"].Extensions)
}

func TestLoadRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ownmap.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 9"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ownmap.toml")
	content := `
[dialects.php]
extensions = ["php"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
