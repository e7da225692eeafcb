package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is loaded once at process start and passed into every component
// that needs it. Nothing else in the application reads environment
// variables after boot.
type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string

	// RedisHost empty means Redis is not used; the login rate limiter then
	// falls back to in-memory counters.
	RedisHost string
	RedisPort int

	SecretKey       string
	TokenTTLMinutes int

	FrontendURL string
	Port        int
	LogDir      string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envString("DB_NAME", "taskman"),
		DBNameTest: envString("DB_NAME_TEST", "taskman_test"),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: envInt("REDIS_PORT", 6379),

		SecretKey:       envString("SECRET_KEY", "your-secret-key-change-in-production"),
		TokenTTLMinutes: envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),

		FrontendURL: envString("FRONTEND_URL", "http://localhost:5000"),
		Port:        envInt("PORT", 3004),
		LogDir:      envString("LOG_DIR", "logs"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
