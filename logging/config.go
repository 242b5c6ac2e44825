package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Environment types
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// GetConfigFromEnv creates a logger configuration based on environment variables
func GetConfigFromEnv() Config {
	config := DefaultConfig

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = strings.ToLower(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = strings.ToLower(format)
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = strings.ToLower(env)
	}

	if addSource := os.Getenv("LOG_ADD_SOURCE"); addSource != "" {
		config.AddSource = strings.ToLower(addSource) == "true"
	}

	// Environment-specific defaults
	switch config.Environment {
	case EnvProduction:
		config.Format = "json"
		config.AddSource = false
	case EnvTest, EnvDevelopment:
		config.Format = "text"
		if config.Level == "" {
			config.Level = "debug"
		}
	}

	return config
}

// DynamicLevelVar allows changing log level at runtime
type DynamicLevelVar struct {
	*slog.LevelVar
}

// NewDynamicLevelVar creates a new dynamic level variable
func NewDynamicLevelVar(initialLevel slog.Level) *DynamicLevelVar {
	levelVar := &slog.LevelVar{}
	levelVar.Set(initialLevel)
	return &DynamicLevelVar{LevelVar: levelVar}
}

// SetFromString sets the level from a string representation
func (d *DynamicLevelVar) SetFromString(level string) bool {
	switch strings.ToLower(level) {
	case "debug":
		d.Set(slog.LevelDebug)
	case "info":
		d.Set(slog.LevelInfo)
	case "warn", "warning":
		d.Set(slog.LevelWarn)
	case "error":
		d.Set(slog.LevelError)
	default:
		return false
	}
	return true
}

// NewLoggerWithDynamicLevel creates a logger with dynamic level support
func NewLoggerWithDynamicLevel(config Config) (*Logger, *DynamicLevelVar) {
	levelVar := NewDynamicLevelVar(parseLevel(config.Level))

	opts := &slog.HandlerOptions{
		Level:     levelVar.LevelVar,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == "text" || config.Environment == "dev" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := &Logger{Logger: slog.New(handler)}
	return logger, levelVar
}
