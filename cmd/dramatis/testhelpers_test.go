package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/dramatis/internal/config"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// loadTestConfig loads the config the commands under test will see.
func loadTestConfig(t *testing.T, cfgPath string) *config.Config {
	t.Helper()
	loader, err := config.NewConfigLoader(cfgPath)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	return cfg
}

// openTestDatabase opens the same database the commands under test write to.
func openTestDatabase(t *testing.T, cfgPath string) *sqlx.DB {
	t.Helper()
	db, err := openDatabase(loadTestConfig(t, cfgPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// formatID renders a database id the way it is passed on the command line.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
