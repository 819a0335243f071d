package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvHome            = "ENERGYPROPHET_HOME"
	EnvGrowthRate      = "ENERGYPROPHET_GROWTH_RATE"
	EnvTargetYear      = "ENERGYPROPHET_TARGET_YEAR"
	EnvCatalog         = "ENERGYPROPHET_CATALOG"
	EnvLogLevel        = "ENERGYPROPHET_LOG_LEVEL"
	EnvAPIKey          = "GOOGLE_API_KEY"
	EnvModel           = "GOOGLE_MODEL"
	EnvBaseURL         = "GOOGLE_BASE_URL"
	EnvTemperature     = "AI_TEMPERATURE"
	EnvTopP            = "AI_TOP_P"
	EnvMaxOutputTokens = "AI_MAX_OUTPUT_TOKENS"
)

// ApplyEnvOverrides applies environment variables on top of c. Values that do
// not parse are logged and ignored.
func ApplyEnvOverrides(c *Config) {
	envFloat(EnvGrowthRate, &c.Simulation.GrowthRate)
	envInt(EnvTargetYear, &c.Simulation.TargetYear)
	envString(EnvCatalog, &c.Catalog.Source)
	envString(EnvLogLevel, &c.Logging.Level)

	envString(EnvAPIKey, &c.Narrative.APIKey)
	envString(EnvModel, &c.Narrative.Model)
	envString(EnvBaseURL, &c.Narrative.BaseURL)
	envFloat(EnvTemperature, &c.Narrative.Temperature)
	envFloat(EnvTopP, &c.Narrative.TopP)
	envInt(EnvMaxOutputTokens, &c.Narrative.MaxOutputTokens)
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envFloat(key string, dst *float64) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		warnBadEnv(key, v, err)
		return
	}
	*dst = f
}

func envInt(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		warnBadEnv(key, v, err)
		return
	}
	*dst = n
}

func warnBadEnv(key, value string, err error) {
	logger := GetLogger()
	logger.Warn().
		Str("component", "config").
		Str("env", key).
		Str("value", value).
		Err(err).
		Msg("ignoring unparseable environment override")
}
