package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend
	BaseURL     string
	HTTPTimeout time.Duration
	Environment string

	// Polling
	TicketPollInterval time.Duration
	ClaimPollInterval  time.Duration
	GraphPollInterval  time.Duration
	NotifyCooldown     time.Duration

	// PubNub (push ticket source; polling is the default when unset)
	PubNubSubscribeKey string
	PubNubPublishKey   string
	PubNubSecretKey    string
	PubNubChannel      string

	// Analytics
	AnalyticsURL string
	AnalyticsKey string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string

	// Dev backend
	DevPort        string
	RedisURL       string
	MentorPassHash string
}

func LoadConfig() *Config {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	return &Config{
		// Backend
		BaseURL:     getEnv("QSTACK_BASE_URL", "http://localhost:8090"),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", "10s"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Polling
		TicketPollInterval: getEnvAsDuration("TICKET_POLL_INTERVAL", "5s"),
		ClaimPollInterval:  getEnvAsDuration("CLAIM_POLL_INTERVAL", "5s"),
		GraphPollInterval:  getEnvAsDuration("GRAPH_POLL_INTERVAL", "3s"),
		NotifyCooldown:     getEnvAsDuration("NOTIFY_COOLDOWN", "2s"),

		// PubNub
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubChannel:      getEnv("PUBNUB_CHANNEL", "qstack-queue"),

		// Analytics
		AnalyticsURL: getEnv("ANALYTICS_URL", ""),
		AnalyticsKey: getEnv("ANALYTICS_KEY", ""),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),

		// Dev backend
		DevPort:        getEnv("DEV_PORT", "8090"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		MentorPassHash: getEnv("MENTOR_PASS_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, fall back to the default value.
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
