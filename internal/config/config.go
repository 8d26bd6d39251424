package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	SignSecret  string
	UploadPath  string
	StaticPath  string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeoAPIURL   string
	JanitorHour int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/mathmotion?sslmode=disable"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SignSecret:  os.Getenv("URL_SIGN_SECRET"),
		UploadPath:  getEnv("UPLOAD_PATH", "./data/uploads"),
		StaticPath:  getEnv("STATIC_PATH", "static"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GeoAPIURL:   getEnv("GEO_API_URL", "https://ipapi.co"),
		JanitorHour: getEnvInt("JANITOR_HOUR", 4),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SignSecret == "" {
		// Signed download URLs fall back to the session secret.
		cfg.SignSecret = cfg.JWTSecret
	}

	return cfg, nil
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
