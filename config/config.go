package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// MQ backend selectors.
const (
	MQBackendNone     = "none"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

type Config struct {
	// Env selects the runtime environment. "production" turns on the
	// Secure attribute of the session cookie.
	Env string

	ServerPort int

	// SessionSecret signs session tokens. Required; the server refuses
	// to start without it.
	SessionSecret string

	Database DatabaseConfig
	MQ       MQConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type MQConfig struct {
	// Backend selects the click-event broker: "none", "rabbitmq" or
	// "pubsub".
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "qoolink"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "qoolink_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	mqConfig := MQConfig{
		Backend: strings.ToLower(getEnv("MQ_BACKEND", MQBackendNone)),
		RabbitMQ: RabbitMQConfig{
			URL:           os.Getenv("RABBITMQ_URL"),
			QueueDurable:  getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			PrefetchCount: getEnvInt("RABBITMQ_PREFETCH_COUNT", 16),
		},
		PubSub: PubSubConfig{
			ProjectID:          os.Getenv("PUBSUB_PROJECT_ID"),
			CredentialsFile:    os.Getenv("PUBSUB_CREDENTIALS_FILE"),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}

	return Config{
		Env:           getEnv("ENV", "dev"),
		ServerPort:    getEnvInt("SERVER_PORT", 8080),
		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		Database:      dbConfig,
		MQ:            mqConfig,
	}
}

// IsProduction reports whether the server runs with production hardening
// (Secure cookies).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
