package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all runtime configuration, loaded once at startup and
// passed down to the layers that need it.
type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	TokenExpiry   time.Duration
	AllowedOrigin string

	// Frontend revalidation hook (on-demand ISR).
	RevalidateURL    string
	RevalidateSecret string

	// SMTP settings for registration confirmation emails.
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
}

// LoadConfig reads configuration from the environment, falling back to a
// local .env file when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	expiryHours := 24
	if v := os.Getenv("TOKEN_EXPIRY_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			expiryHours = parsed
		} else {
			log.WithError(err).Warn("Invalid TOKEN_EXPIRY_HOURS, using default")
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "noah"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenExpiry:      time.Duration(expiryHours) * time.Hour,
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		RevalidateURL:    os.Getenv("REVALIDATE_URL"),
		RevalidateSecret: os.Getenv("REVALIDATE_SECRET"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         os.Getenv("SMTP_PORT"),
		SMTPSender:       os.Getenv("SMTP_SENDER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
