// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderTwilio = "twilio"
	ProviderMock   = "mock"
)

type Config struct {
	Port string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	AMQPURL string

	Provider         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	// VerifiedNumbers restricts sends to an allowlist (trial accounts);
	// empty means no restriction.
	VerifiedNumbers  []string
	ValidateWebhooks bool
	// PublicBaseURL is the externally visible base URL used to reconstruct
	// the signed webhook URL (e.g. behind a proxy).
	PublicBaseURL string

	SendTimeout time.Duration
	MaxWorkers  int

	SchedulerInterval time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "messaging_platform"),
		AMQPURL:           getEnv("AMQP_URL", ""),
		Provider:          getEnv("MESSAGE_PROVIDER", ProviderMock),
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:        getEnv("TWILIO_WHATSAPP_FROM", ""),
		ValidateWebhooks:  getEnvBool("TWILIO_VALIDATE_WEBHOOKS", false),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", ""),
		SendTimeout:       getEnvDuration("SEND_TIMEOUT", 15*time.Second),
		MaxWorkers:        getEnvInt("DISPATCH_MAX_WORKERS", 8),
		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", 30*time.Second),
	}

	if v := os.Getenv("VERIFIED_NUMBERS"); v != "" {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				cfg.VerifiedNumbers = append(cfg.VerifiedNumbers, n)
			}
		}
	}

	return cfg
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
