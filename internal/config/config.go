package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// Primary SMTP transport
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Secondary provider-API transport (fallback)
	ResendAPIKey string
	ResendFrom   string

	// Engine tuning
	ConnectTimeout   time.Duration
	CommandTimeout   time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	BatchSize        int
	BatchTimeoutCap  time.Duration
	RuleFetchTimeout time.Duration
	CacheTTL         time.Duration
	SendRate         float64 // messages per second
	MaxConnections   int

	// Booking reminders
	ReminderSchedule string
	ReminderWindow   time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "vowops"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "vowops"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		ResendFrom:   getEnv("RESEND_FROM", ""),

		ConnectTimeout:   getEnvDuration("CONNECT_TIMEOUT", 10*time.Second),
		CommandTimeout:   getEnvDuration("COMMAND_TIMEOUT", 30*time.Second),
		MaxRetries:       getEnvInt("MAX_RETRIES", 1),
		RetryBaseDelay:   getEnvDuration("RETRY_BASE_DELAY", 2*time.Second),
		BatchSize:        getEnvInt("RULE_BATCH_SIZE", 5),
		BatchTimeoutCap:  getEnvDuration("BATCH_TIMEOUT_CAP", 30*time.Second),
		RuleFetchTimeout: getEnvDuration("RULE_FETCH_TIMEOUT", 5*time.Second),
		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),
		SendRate:         getEnvFloat("SEND_RATE", 5),
		MaxConnections:   getEnvInt("MAX_CONNECTIONS", 5),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
		ReminderWindow:   getEnvDuration("REMINDER_WINDOW", 72*time.Hour),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
