package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	CORSOrigin string
	// Snapshot storage: Postgres when DatabaseURL is set, otherwise Redis.
	DatabaseURL string
	RedisURL    string
	// Search
	MeiliURL       string
	MeiliMasterKey string
	// Snapshot archive (object storage) - disabled when endpoint is empty
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// SMTP - empty by default, alert emails disabled if not configured
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPFromName    string
	AlertRecipients string
}

func Load() Config {
	return Config{
		Addr:            getenv("API_ADDR", ":8790"),
		JWTSecret:       getenv("STOCKPILE_JWT_SECRET", "stockpile-dev-secret"),
		AccessTTL:       time.Duration(getenvInt("STOCKPILE_ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:      time.Duration(getenvInt("STOCKPILE_REFRESH_TTL_SECONDS", 2592000)) * time.Second,
		CORSOrigin:      getenv("STOCKPILE_CORS_ORIGIN", "*"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		RedisURL:        getenv("REDIS_URL", "redis://localhost:6379/0"),
		MeiliURL:        getenv("MEILI_URL", ""),
		MeiliMasterKey:  getenv("MEILI_MASTER_KEY", ""),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "stockpile-snapshots"),
		MinioUseSSL:     getenvBool("MINIO_USE_SSL", false),
		SMTPHost:        getenv("SMTP_HOST", ""),
		SMTPPort:        getenv("SMTP_PORT", "587"),
		SMTPUsername:    getenv("SMTP_USERNAME", ""),
		SMTPPassword:    getenv("SMTP_PASSWORD", ""),
		SMTPFrom:        getenv("SMTP_FROM", ""),
		SMTPFromName:    getenv("SMTP_FROM_NAME", "Stockpile"),
		AlertRecipients: getenv("STOCKPILE_ALERT_RECIPIENTS", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
