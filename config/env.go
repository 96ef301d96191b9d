package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	MigrationsDir    string
	RedisURL         string
	RedisAddr        string
	RedisPassword    string
	JWTSecret        string
	JWTExpiry        time.Duration
	OriginURL        string
	MaxUploadSize    int64
	TaxRate          string
	OrderSyncTimeout time.Duration
	CloudinaryURL    string
	CloudName        string
	CloudAPIKey      string
	CloudAPISecret   string
	CloudFolder      string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFrom         string
	AdminEmail       string
	KafkaBrokers     []string
	KafkaTopic       string
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// LoadConfig reads .env when present and falls back to the process
// environment. Serverless deployments set VERCEL and never ship a .env file.
func LoadConfig() *Config {
	if os.Getenv("VERCEL") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using system environment variables")
		}
	}

	maxUploadSize, _ := strconv.ParseInt(os.Getenv("MAX_UPLOAD_SIZE"), 10, 64)
	if maxUploadSize == 0 {
		maxUploadSize = 5242880
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	return &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("APP_PORT", getEnv("PORT", "8082")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "saif_gifts"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "database/migration"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		JWTExpiry:        getDuration("JWT_EXPIRY", 24*time.Hour),
		OriginURL:        os.Getenv("ORIGIN_URL"),
		MaxUploadSize:    maxUploadSize,
		TaxRate:          getEnv("TAX_RATE", "0.10"),
		OrderSyncTimeout: getDuration("ORDER_SYNC_TIMEOUT", 5*time.Second),
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudName:        os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudAPIKey:      os.Getenv("CLOUDINARY_API_KEY"),
		CloudAPISecret:   os.Getenv("CLOUDINARY_API_SECRET"),
		CloudFolder:      getEnv("CLOUDINARY_FOLDER", "products"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		SMTPFrom:         getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "orders-placed"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
