package config_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/logging"
)

func TestSetLogger(t *testing.T) {
	previous := config.GetLogger()
	t.Cleanup(func() { config.SetLogger(previous) })

	var buf bytes.Buffer
	config.SetLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	logger := config.GetLogger()
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	t.Setenv(config.EnvGrowthRate, "fast")
	cfg := config.Default()
	config.ApplyEnvOverrides(cfg)

	assert.Contains(t, buf.String(), "ignoring unparseable environment override")
	assert.Contains(t, buf.String(), config.EnvGrowthRate)
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "json", got.Format)

	lc.File = "/var/log/energyprophet.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/var/log/energyprophet.log", got.File)
}
