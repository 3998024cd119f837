package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// EscalationConfig drives the overdue-request scans.
type EscalationConfig struct {
	// ConsiderationWindow is how long an unassigned request may wait before
	// the building's managers are warned.
	ConsiderationWindow time.Duration
	// ExecutionWindow is how long an assigned, unfinished request may run
	// before the assignee is warned.
	ExecutionWindow time.Duration
	// Scan cadences.
	IntakeScanInterval    time.Duration
	ExecutionScanInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

type Config struct {
	Port           string
	DatabaseDSN    string
	JWTSecret      string
	AccessTokenTTL time.Duration
	AllowOrigins   []string
	SMTP           SMTPConfig
	Escalation     EscalationConfig
}

// Load reads configs/.env (if present) and assembles the configuration from
// environment variables with development defaults.
func Load() *Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dsn := "postgres://" + getenv("DB_USER", "postgres") + ":" + getenv("DB_PASSWORD", "postgres") +
		"@" + getenv("DB_HOST", "localhost") + ":" + getenv("DB_PORT", "5432") +
		"/" + getenv("DB_NAME", "postgres") + "?sslmode=" + getenv("DB_SSLMODE", "disable")

	return &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseDSN:    dsn,
		JWTSecret:      jwtSecret(),
		AccessTokenTTL: getduration("ACCESS_TOKEN_TTL", 24*time.Hour),
		AllowOrigins:   []string{getenv("FRONTEND_ORIGIN", "http://localhost:5173")},
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getenv("SMTP_PORT", "587"),
			From:     getenv("SMTP_FROM", ""),
			Password: getenv("SMTP_PASSWORD", ""),
		},
		Escalation: EscalationConfig{
			ConsiderationWindow:   getduration("CONSIDERATION_WINDOW", 4*time.Hour),
			ExecutionWindow:       getduration("EXECUTION_WINDOW", 24*time.Hour),
			IntakeScanInterval:    getduration("INTAKE_SCAN_INTERVAL", 5*time.Minute),
			ExecutionScanInterval: getduration("EXECUTION_SCAN_INTERVAL", 5*time.Minute),
		},
	}
}

func jwtSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			log.Fatal("JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only
	}
	return secret
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warnf("invalid duration in %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
