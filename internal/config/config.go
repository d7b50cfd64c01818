package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/glucolab/glucometer/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DB       DBConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Analysis AnalysisConfig
}

type DBConfig struct {
	Driver     string // "sqlite" or "postgres"
	SQLitePath string

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled bool
	Host    string
	Port    string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

type AnalysisConfig struct {
	WindowDays int // trailing statistics window, dashboard default
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	windowDays, err := strconv.Atoi(getEnvOrDefault("STATS_WINDOW_DAYS", "30"))
	if err != nil || windowDays <= 0 {
		return nil, fmt.Errorf("STATS_WINDOW_DAYS must be a positive integer")
	}

	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return &Config{
		DB: DBConfig{
			Driver:     driver,
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "glucometer_data.db"),
			Host:       getEnvOrDefault("DB_HOST", "localhost"),
			Port:       getEnvOrDefault("DB_PORT", "5432"),
			User:       getEnvOrDefault("DB_USER", "postgres"),
			Password:   getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:     getEnvOrDefault("DB_NAME", "glucometer"),
		},
		Redis: RedisConfig{
			Enabled: getEnvOrDefault("REDIS_ENABLED", "false") == "true",
			Host:    getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:    getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stderr"),
			Format:     getEnvOrDefault("LOG_FORMAT", "text"),
		},
		Analysis: AnalysisConfig{
			WindowDays: windowDays,
		},
	}, nil
}
