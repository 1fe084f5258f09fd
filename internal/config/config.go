package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/oso-hr/timetracking-api/internal/constants"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	AppBaseURL    string
	ResendAPIKey  string
	MailFrom      string
	LocalMail     bool
	SendDelay     time.Duration
	OpenAIAPIKey  string
}

func Load() *Config {
	// Optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "timetrack"),
		DBPassword:    getEnv("DB_PASSWORD", "timetrack"),
		DBName:        getEnv("DB_NAME", "timetracking"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:8080"),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		MailFrom:      getEnv("MAIL_FROM", "onboarding@resend.dev"),
		LocalMail:     getEnvBool("LOCAL_MAIL", false),
		SendDelay:     getEnvDuration("EMAIL_SEND_DELAY", constants.DefaultSendDelay),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
