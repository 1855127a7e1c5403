package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the admin API reads from the environment.
// It is loaded once in main and passed by value to constructors; nothing
// else in the process reads os.Getenv after startup.
type Config struct {
	// Database connection parameters
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Admin session tokens
	JWTSecret string
	JWTExpiry time.Duration

	// HTTP server
	Port       string
	CORSOrigin string

	// Upstream application API (reserved for cross-service calls)
	MainAPIURL string

	// Optional Redis for the distributed login rate limiter
	RedisAddr     string
	RedisPassword string
	LoginRPM      int

	// Cron spec for the notification sweeper; empty disables it
	SweepCron string
}

// Load reads configuration from the environment, falling back to the same
// development defaults the service has always shipped with.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: Could not load .env file:", err)
	}

	return Config{
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "familynest_user"),
		DBPassword: getenv("DB_PASSWORD", "password"),
		DBName:     getenv("DB_NAME", "familynest_test"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		JWTSecret: getenv("JWT_SECRET", "supersecretadminjwtkey"),
		JWTExpiry: time.Duration(getenvInt("JWT_EXPIRES_HOURS", 24)) * time.Hour,

		Port:       getenv("ADMIN_API_PORT", "3001"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),

		MainAPIURL: getenv("MAIN_API_URL", "http://localhost:8080/api"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LoginRPM:      getenvInt("LOGIN_RPM", 30),

		SweepCron: getenv("NOTIFICATION_SWEEP_CRON", "*/10 * * * *"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
