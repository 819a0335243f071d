package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/config"
)

func TestConfigInit(t *testing.T) {
	home := setupCLITest(t)

	out, err := executeCmd(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")

	path := filepath.Join(home, "config.yaml")
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Simulation, cfg.Simulation)
}

func TestConfigInit_ExistingRequiresForce(t *testing.T) {
	home := setupCLITest(t)
	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  growth_rate: 0.03\n  target_year: 2040\n"), 0o600))

	_, err := executeCmd(t, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	config.ResetGlobalConfigForTest()
	_, err = executeCmd(t, "", "config", "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "growth_rate: 0.02")
}

func TestConfigInit_NeverWritesAPIKey(t *testing.T) {
	home := setupCLITest(t)
	t.Setenv(config.EnvAPIKey, "secret-key")

	_, err := executeCmd(t, "", "config", "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-key")
}
