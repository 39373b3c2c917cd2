// Package config loads application settings from environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Email transport names accepted by EMAIL_PROVIDER.
const (
	EmailProviderSMTP     = "smtp"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderLog      = "log"
)

// Admin is one entry of the admin allow-list.
type Admin struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns URL when set, otherwise a libpq-compatible keyword string.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Email holds notifier settings.
type Email struct {
	Provider       string
	SMTPHost       string
	SMTPPort       string
	Username       string
	Password       string
	From           string
	FromName       string
	SendGridAPIKey string
	SendTimeout    time.Duration
}

// Config holds application configuration.
type Config struct {
	Port        string
	LogLevel    string
	WebDir      string
	AutoMigrate bool
	Database    Database
	Email       Email
	Admins      []Admin
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		WebDir:      getEnv("WEB_DIR", "./web"),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", true),
		Database: Database{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "salon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Email: Email{
			Provider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
			SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			Username:       getEnv("EMAILUSER", ""),
			Password:       getEnv("EMAILPASS", ""),
			FromName:       getEnv("EMAIL_FROM_NAME", "Salon"),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			SendTimeout:    getEnvAsDuration("EMAIL_SEND_TIMEOUT", 30*time.Second),
		},
	}
	cfg.Email.From = getEnv("EMAIL_FROM", cfg.Email.Username)

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = defaultProvider(cfg.Email)
	}
	switch cfg.Email.Provider {
	case EmailProviderSMTP, EmailProviderSendGrid, EmailProviderLog:
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be one of smtp, sendgrid, log (got %q)", cfg.Email.Provider)
	}

	admins, err := parseAdmins(os.Getenv("ADMINS"))
	if err != nil {
		return nil, err
	}
	cfg.Admins = admins

	if p, err := strconv.Atoi(cfg.Port); err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("PORT must be a valid TCP port (got %q)", cfg.Port)
	}
	return cfg, nil
}

func defaultProvider(e Email) string {
	switch {
	case e.SendGridAPIKey != "":
		return EmailProviderSendGrid
	case e.Username != "":
		return EmailProviderSMTP
	default:
		return EmailProviderLog
	}
}

// parseAdmins decodes the ADMINS JSON array. An empty value yields no admins.
func parseAdmins(raw string) ([]Admin, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var admins []Admin
	if err := json.Unmarshal([]byte(raw), &admins); err != nil {
		return nil, fmt.Errorf("parse ADMINS: %w", err)
	}
	return admins, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
