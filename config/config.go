// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// Server
	Debug           bool
	Port            string
	TLSDomains      []string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Catalog metadata cache. Empty RedisURL disables caching.
	RedisURL        string
	CatalogCacheTTL time.Duration

	// Booking events. No brokers means events are dropped.
	KafkaBrokers []string
	KafkaTopic   string

	// MySQL – legacy database, used only by cmd/migrate.
	MySQLDSN string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg := fromViper(newViper())
	if err := cfg.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func fromViper(v *viper.Viper) *Config {
	// Defaults
	v.SetDefault("DB_USER", "matchable")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "matchable")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":8000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("KAFKA_TOPIC", "bookings.events")
	v.SetDefault("DEBUG", false)

	return &Config{
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBUser:          v.GetString("DB_USER"),
		DBPass:          v.GetString("DB_PASS"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		Debug:           v.GetBool("DEBUG"),
		Port:            v.GetString("PORT"),
		TLSDomains:      splitTrimmed(v.GetString("TLS_DOMAINS")),
		CORSOrigins:     splitTrimmed(v.GetString("CORS_ORIGINS")),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		RedisURL:        v.GetString("REDIS_URL"),
		CatalogCacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		KafkaBrokers:    splitTrimmed(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:      v.GetString("KAFKA_TOPIC"),
		MySQLDSN:        v.GetString("MYSQL_DSN"),
	}
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// AutoTLS reports whether the server should obtain certificates via ACME.
func (c *Config) AutoTLS() bool {
	return !c.Debug && len(c.TLSDomains) > 0
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" && c.DBPass == "" {
		return errors.New("DATABASE_URL or DB_PASS must be set")
	}
	if c.CatalogCacheTTL < 0 {
		return errors.New("CATALOG_CACHE_TTL must not be negative")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
