package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string
	TOKEN_TTL   time.Duration

	REDIS_URL string

	// bcrypt hash of the secondary password guarding the super-admin surface
	MASTER_PASSWORD_HASH string

	SECONDARY_AUTH_MAX_ATTEMPTS int64
	SECONDARY_AUTH_WINDOW       time.Duration

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	STRIPE_PRICE_ANNUAL   string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")
	TOKEN_TTL = getDuration("TOKEN_TTL", 12*time.Hour)

	REDIS_URL = getEnv("REDIS_URL", "")

	MASTER_PASSWORD_HASH = getEnv("MASTER_PASSWORD_HASH", "")
	SECONDARY_AUTH_MAX_ATTEMPTS = int64(getInt("SECONDARY_AUTH_MAX_ATTEMPTS", 5))
	SECONDARY_AUTH_WINDOW = getDuration("SECONDARY_AUTH_WINDOW", 15*time.Minute)

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_PRICE_ANNUAL = getEnv("STRIPE_PRICE_ANNUAL", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
