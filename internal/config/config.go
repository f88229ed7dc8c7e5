package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Config holds all application configuration.
type Config struct {
	Port         string        `validate:"required,numeric"`
	TickInterval time.Duration `validate:"gt=0"`
	LogLevel     string        `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat    string        `validate:"oneof=text json"`
	Session      SessionConfig
	LoginLimit   RateLimitConfig
	MQTT         MQTTConfig
}

// SessionConfig controls the informational session cookie.
type SessionConfig struct {
	JWTSecret string        `validate:"required"`
	Expiry    time.Duration `validate:"gt=0"`
}

// RateLimitConfig caps login submissions per client IP.
type RateLimitConfig struct {
	MaxRequests   int `validate:"gt=0"`
	WindowSeconds int `validate:"gt=0"`
}

// Window is the sliding window the limit applies to.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// MQTTConfig configures the optional position mirror. An empty BrokerURL
// turns the mirror off.
type MQTTConfig struct {
	BrokerURL   string
	ClientID    string `validate:"required"`
	TopicPrefix string `validate:"required"`
	QoS         int    `validate:"gte=0,lte=2"`
}

// Enabled reports whether a broker was configured.
func (c MQTTConfig) Enabled() bool {
	return c.BrokerURL != ""
}

// Load reads an optional .env file, then the environment, then validates.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		TickInterval: time.Duration(getEnvInt("SIM_TICK_SECONDS", 3)) * time.Second,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		Session: SessionConfig{
			JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
			Expiry:    getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		},
		LoginLimit: RateLimitConfig{
			MaxRequests:   getEnvInt("LOGIN_RATE_LIMIT", 30),
			WindowSeconds: getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60),
		},
		MQTT: MQTTConfig{
			BrokerURL:   os.Getenv("MQTT_BROKER_URL"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "schoolbus-tracker"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "schoolbus"),
			QoS:         getEnvInt("MQTT_QOS", 0),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a config struct.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// getEnvInt falls back to the default when the variable is unset or not a number.
func getEnvInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
