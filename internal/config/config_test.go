package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "config file should be created")

	assert.Equal(t, "all", cfg.DefaultFilter)
	assert.Equal(t, DefaultStorageKey, cfg.StorageKey)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultDBName), cfg.DBPath)
	assert.Equal(t, "a", cfg.Keys.Add)
}

func TestLoadOrCreate_ReadsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
db_path = "/var/tmp/tasks.db"
default_filter = "pending"
seed_demo = false
notify_seconds = 5

[keys]
add = "n"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/tmp/tasks.db", cfg.DBPath)
	assert.Equal(t, "pending", cfg.DefaultFilter)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, 5*time.Second, cfg.NotifyDuration())
	assert.Equal(t, "n", cfg.Keys.Add)
	// unset keys fall back to defaults
	assert.Equal(t, "q", cfg.Keys.Quit)
	assert.Equal(t, DefaultStorageKey, cfg.StorageKey)
}

func TestLoadOrCreate_RelativeDBPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`db_path = "data/todo.db"`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "todo.db"), cfg.DBPath)
}

func TestLoadOrCreate_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("db_path = ["), 0o644))

	_, err := LoadOrCreate(path)
	require.Error(t, err)
}

func TestNotifyDuration_Default(t *testing.T) {
	assert.Equal(t, 3*time.Second, Config{}.NotifyDuration())
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(envConfig, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}
