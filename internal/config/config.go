package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the API server and worker
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Server   ServerConfig   `yaml:"server"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis configuration for the task queue
type RedisConfig struct {
	Address string `yaml:"address"` // host:port
}

// AuthConfig holds token issuance configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      string `yaml:"port"`
	UploadDir string `yaml:"upload_dir"` // where payment receipts are stored
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	// Cron expression for the membership renewal reminder sweep,
	// e.g. "0 8 * * *" (8am daily). Empty disables the scheduler.
	RenewalSchedule string `yaml:"renewal_schedule"`
	// Days before membership expiry at which reminders start
	RenewalWindowDays int `yaml:"renewal_window_days"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// Load builds configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		Database: DatabaseConfig{URL: "alumnihub.sqlite"},
		Redis:    RedisConfig{Address: "localhost:6379"},
		Server:   ServerConfig{Port: "8080", UploadDir: "uploads"},
		Worker: WorkerConfig{
			RenewalSchedule:   "0 8 * * *",
			RenewalWindowDays: 30,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}

	if err := applyYAML(cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	return cfg, nil
}

// applyYAML overlays values from alumnihub.yaml (or ALUMNIHUB_CONFIG) if present
func applyYAML(cfg *Config) error {
	path := os.Getenv("ALUMNIHUB_CONFIG")
	if path == "" {
		path = "alumnihub.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	setIfPresent(&cfg.Database.URL, "DATABASE_URL")
	setIfPresent(&cfg.Redis.Address, "REDIS_ADDRESS")
	setIfPresent(&cfg.Auth.JWTSecret, "ALUMNIHUB_JWT_SECRET")
	setIfPresent(&cfg.Server.Port, "PORT")
	setIfPresent(&cfg.Server.UploadDir, "UPLOAD_DIR")
	setIfPresent(&cfg.Worker.RenewalSchedule, "RENEWAL_SCHEDULE")
	setIfPresent(&cfg.Logging.Level, "LOG_LEVEL")
	setIfPresent(&cfg.Logging.Format, "LOG_FORMAT")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
