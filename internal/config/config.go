package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mail      MailConfig      `mapstructure:"mail"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Frontend  FrontendConfig  `mapstructure:"frontend"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type MailConfig struct {
	Host     string `mapstructure:"MAIL_HOST"`
	Port     int    `mapstructure:"MAIL_PORT"`
	Username string `mapstructure:"MAIL_USERNAME"`
	Password string `mapstructure:"MAIL_PASSWORD"`
	From     string `mapstructure:"MAIL_FROM"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"JWT_SECRET"`
}

type FrontendConfig struct {
	URL string `mapstructure:"FRONTEND_URL"`
}

type SchedulerConfig struct {
	DriftCron    string `mapstructure:"SCHEDULER_DRIFT_CRON"`
	ReminderCron string `mapstructure:"SCHEDULER_REMINDER_CRON"`
}

type BusinessConfig struct {
	ReminderInterval string `mapstructure:"REMINDER_INTERVAL"`
	SummaryCacheTTL  string `mapstructure:"SUMMARY_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MAIL_PORT", 587)
	viper.SetDefault("MAIL_FROM", "Expense Tracker App")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("SCHEDULER_DRIFT_CRON", "0 0 2 * * *")
	viper.SetDefault("SCHEDULER_REMINDER_CRON", "0 0 9 * * SUN")
	viper.SetDefault("REMINDER_INTERVAL", "168h")
	viper.SetDefault("SUMMARY_CACHE_TTL", "5m")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if _, err := time.ParseDuration(c.Business.ReminderInterval); err != nil {
		return fmt.Errorf("REMINDER_INTERVAL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Business.SummaryCacheTTL); err != nil {
		return fmt.Errorf("SUMMARY_CACHE_TTL must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetReminderInterval returns the reminder interval as duration
func (c *Config) GetReminderInterval() time.Duration {
	interval, _ := time.ParseDuration(c.Business.ReminderInterval)
	return interval
}

// GetSummaryCacheTTL returns the summary cache TTL as duration
func (c *Config) GetSummaryCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Business.SummaryCacheTTL)
	return ttl
}

// RegistrationLink is the URL unregistered counterparts are pointed at.
func (c *Config) RegistrationLink() string {
	return c.Frontend.URL + "/register"
}
