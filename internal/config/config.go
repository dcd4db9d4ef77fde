package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyPort             = "PORT"
	KeySensorAPIURL     = "SENSOR_API_URL"
	KeySensorAPIKey     = "SENSOR_API_KEY"
	KeySensorAPISecret  = "SENSOR_API_SECRET"
	KeyUpstreamTimeout  = "UPSTREAM_TIMEOUT"
	KeyPollInterval     = "POLL_INTERVAL"
	KeyHeatmapCommand   = "HEATMAP_COMMAND"
	KeyHeatmapArgs      = "HEATMAP_ARGS"
	KeyHeatmapTimeout   = "HEATMAP_TIMEOUT"
	KeyPublicDir        = "PUBLIC_DIR"
	KeyAllowedOrigins   = "ALLOWED_ORIGINS"
	KeyMQTTBroker       = "MQTT_BROKER"
	KeyMQTTClientID     = "MQTT_CLIENT_ID"
	KeyMQTTTopicPrefix  = "MQTT_TOPIC_PREFIX"
	KeyMQTTUsername     = "MQTT_USERNAME"
	KeyMQTTPassword     = "MQTT_PASSWORD"
	KeyLogLevel         = "LOG_LEVEL"
	KeyDashboardBaseURL = "DASHBOARD_URL"
)

// Config holds the application's configuration.
type Config struct {
	Port            string
	SensorAPIURL    string
	SensorAPIKey    string
	SensorAPISecret string
	UpstreamTimeout time.Duration
	PollInterval    time.Duration

	HeatmapCommand string
	HeatmapArgs    []string
	HeatmapTimeout time.Duration
	PublicDir      string

	AllowedOrigins []string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	MQTTUsername    string
	MQTTPassword    string

	LogLevel     string
	DashboardURL string
}

type loadSettings struct {
	envFiles       []string
	skipValidation bool
}

// Option configures LoadConfig. Mostly useful for tests.
type Option func(*loadSettings)

// WithEnvFiles overrides the .env files read before the environment.
func WithEnvFiles(paths ...string) Option {
	return func(s *loadSettings) {
		s.envFiles = paths
	}
}

// SkipValidation returns the configuration as loaded. The terminal dashboard
// uses it since it only talks to the dashboard server.
func SkipValidation() Option {
	return func(s *loadSettings) {
		s.skipValidation = true
	}
}

// LoadConfig loads the configuration from .env (if present) and environment variables.
func LoadConfig(opts ...Option) (Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	if err := godotenv.Load(settings.envFiles...); err != nil {
		log.Info("no .env file found, relying on system environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Port:            v.GetString(KeyPort),
		SensorAPIURL:    strings.TrimSpace(v.GetString(KeySensorAPIURL)),
		SensorAPIKey:    v.GetString(KeySensorAPIKey),
		SensorAPISecret: v.GetString(KeySensorAPISecret),
		UpstreamTimeout: v.GetDuration(KeyUpstreamTimeout),
		PollInterval:    v.GetDuration(KeyPollInterval),
		HeatmapCommand:  strings.TrimSpace(v.GetString(KeyHeatmapCommand)),
		HeatmapArgs:     strings.Fields(v.GetString(KeyHeatmapArgs)),
		HeatmapTimeout:  v.GetDuration(KeyHeatmapTimeout),
		PublicDir:       v.GetString(KeyPublicDir),
		AllowedOrigins:  splitList(v.GetString(KeyAllowedOrigins)),
		MQTTBroker:      strings.TrimSpace(v.GetString(KeyMQTTBroker)),
		MQTTClientID:    v.GetString(KeyMQTTClientID),
		MQTTTopicPrefix: strings.Trim(v.GetString(KeyMQTTTopicPrefix), "/"),
		MQTTUsername:    v.GetString(KeyMQTTUsername),
		MQTTPassword:    v.GetString(KeyMQTTPassword),
		LogLevel:        v.GetString(KeyLogLevel),
		DashboardURL:    strings.TrimRight(v.GetString(KeyDashboardBaseURL), "/"),
	}

	if settings.skipValidation {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8081")
	v.SetDefault(KeyUpstreamTimeout, 10*time.Second)
	v.SetDefault(KeyPollInterval, 30*time.Second)
	v.SetDefault(KeyHeatmapCommand, "heatmap")
	v.SetDefault(KeyHeatmapArgs, "")
	v.SetDefault(KeyHeatmapTimeout, 2*time.Minute)
	v.SetDefault(KeyPublicDir, "./public")
	v.SetDefault(KeyAllowedOrigins, "http://localhost:5173")
	v.SetDefault(KeyMQTTClientID, "capiot-dashboard")
	v.SetDefault(KeyMQTTTopicPrefix, "floor/devices")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDashboardBaseURL, "http://localhost:8081")
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	if c.SensorAPIURL == "" {
		return fmt.Errorf("sensor API configuration is incomplete. Please set %s", KeySensorAPIURL)
	}
	if c.Port == "" {
		return fmt.Errorf("invalid %s: must not be empty", KeyPort)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid %s: must be > 0", KeyPollInterval)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("invalid %s: must be > 0", KeyUpstreamTimeout)
	}
	if c.HeatmapTimeout <= 0 {
		return fmt.Errorf("invalid %s: must be > 0", KeyHeatmapTimeout)
	}
	if c.HeatmapCommand == "" {
		return fmt.Errorf("invalid %s: must not be empty", KeyHeatmapCommand)
	}
	return nil
}

// ListenAddress returns the address the HTTP server binds to.
func (c Config) ListenAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
