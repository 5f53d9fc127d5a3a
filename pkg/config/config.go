package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Mail     MailConfig
	Site     SiteConfig
	Plan     string
	LogLevel string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

// MailConfig selects and configures the outgoing mail transport.
// Transport is either "smtp" (gomail) or "resend" (HTTP API).
type MailConfig struct {
	Transport    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ResendAPIKey string
	FromName     string
	FromEmail    string
}

// SiteConfig describes the blog this service mails for. BaseURL is used
// to build confirmation, unsubscribe and tracking links.
type SiteConfig struct {
	Name    string
	BaseURL string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "blogmailer-dev-secret"),
		},
		Mail: MailConfig{
			Transport:    getEnv("MAIL_TRANSPORT", "smtp"),
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromName:     getEnv("MAIL_FROM_NAME", "BlogMailer"),
			FromEmail:    getEnv("MAIL_FROM_EMAIL", "noreply@localhost"),
		},
		Site: SiteConfig{
			Name:    getEnv("SITE_NAME", "My Blog"),
			BaseURL: getEnv("SITE_BASE_URL", "http://localhost:3000"),
		},
		Plan:     getEnv("PLAN", "free"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
