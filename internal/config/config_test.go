package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	KeyPort, KeySensorAPIURL, KeySensorAPIKey, KeySensorAPISecret, KeyUpstreamTimeout,
	KeyPollInterval, KeyHeatmapCommand, KeyHeatmapArgs, KeyHeatmapTimeout, KeyPublicDir,
	KeyAllowedOrigins, KeyMQTTBroker, KeyMQTTClientID, KeyMQTTTopicPrefix, KeyMQTTUsername,
	KeyMQTTPassword, KeyLogLevel,
	KeyDashboardBaseURL,
}

// clearEnv unsets every config key for the duration of the test. godotenv never
// overrides a variable that is already present, even when empty.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		key := key
		old, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}
}

func missingEnvFile(t *testing.T) Option {
	return WithEnvFiles(filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv(KeySensorAPIURL, "https://api.example.com/v2/projects/p1/devices")

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, ":8081", cfg.ListenAddress())
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2*time.Minute, cfg.HeatmapTimeout)
	assert.Equal(t, "heatmap", cfg.HeatmapCommand)
	assert.Empty(t, cfg.HeatmapArgs)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "floor/devices", cfg.MQTTTopicPrefix)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	body := "SENSOR_API_URL=https://api.example.com/devices\n" +
		"SENSOR_API_KEY=key\n" +
		"SENSOR_API_SECRET=secret\n" +
		"POLL_INTERVAL=5s\n" +
		"HEATMAP_ARGS=--layout layout.json --out public/hm.png\n" +
		"ALLOWED_ORIGINS=http://a.test, http://b.test\n" +
		"MQTT_TOPIC_PREFIX=/building/3/\n"
	require.NoError(t, os.WriteFile(envFile, []byte(body), 0o600))

	cfg, err := LoadConfig(WithEnvFiles(envFile))
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.SensorAPIKey)
	assert.Equal(t, "secret", cfg.SensorAPISecret)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"--layout", "layout.json", "--out", "public/hm.png"}, cfg.HeatmapArgs)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "building/3", cfg.MQTTTopicPrefix)
}

func TestEnvironmentWinsOverEnvFile(t *testing.T) {
	clearEnv(t)
	os.Setenv(KeySensorAPIURL, "https://from-env.test")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SENSOR_API_URL=https://from-file.test\n"), 0o600))

	cfg, err := LoadConfig(WithEnvFiles(envFile))
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.test", cfg.SensorAPIURL)
}

func TestLoadConfigRequiresSensorURL(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(missingEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeySensorAPIURL)
}

func TestValidateRejectsNonPositiveDurations(t *testing.T) {
	base := Config{
		Port:            "8081",
		SensorAPIURL:    "https://x.test",
		UpstreamTimeout: time.Second,
		PollInterval:    time.Second,
		HeatmapTimeout:  time.Second,
		HeatmapCommand:  "heatmap",
	}
	require.NoError(t, base.Validate())

	cfg := base
	cfg.PollInterval = 0
	assert.ErrorContains(t, cfg.Validate(), KeyPollInterval)

	cfg = base
	cfg.UpstreamTimeout = -time.Second
	assert.ErrorContains(t, cfg.Validate(), KeyUpstreamTimeout)

	cfg = base
	cfg.HeatmapCommand = ""
	assert.ErrorContains(t, cfg.Validate(), KeyHeatmapCommand)
}

func TestSkipValidationAllowsMissingSensorURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyDashboardBaseURL, "http://dash.test:9000/")

	cfg, err := LoadConfig(missingEnvFile(t), SkipValidation())
	require.NoError(t, err)
	assert.Empty(t, cfg.SensorAPIURL)
	assert.Equal(t, "http://dash.test:9000", cfg.DashboardURL)
}
