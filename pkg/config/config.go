package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// EnvFiles are loaded in order; variables already set are never overridden
var EnvFiles = []string{".env.local", ".env"}

type Config struct {
	// Webhook
	WebhookURL string
	Timeout    time.Duration

	// Conversation
	Mode string

	// Web UI server
	Addr string

	// Logging
	LogLevel string
	LogFile  string

	// Optional YAML file applied over the environment, see ApplyFile
	File string
}

// Load reads configuration from .env files and the environment.
// A missing webhook URL is not an error here; it surfaces when a question is submitted.
func Load() *Config {
	for _, f := range EnvFiles {
		_ = godotenv.Load(f)
	}

	return &Config{
		WebhookURL: firstEnv("WEBHOOK_URL", "N8N_WEBHOOK_URL"),
		Timeout:    getEnvAsDurationOrDefault("WEBHOOK_TIMEOUT", 0),
		Mode:       getEnvOrDefault("CHAT_MODE", "conversation"),
		Addr:       getEnvOrDefault("ADDR", ":8080"),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:    getEnvOrDefault("LOG_FILE", ""),
		File:       getEnvOrDefault("CHAT_CONFIG", ""),
	}
}

// AddFlags registers flags that override the loaded values
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.WebhookURL, "webhook-url", c.WebhookURL, "Webhook URL questions are posted to (env WEBHOOK_URL)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Per-question timeout, 0 waits indefinitely (env WEBHOOK_TIMEOUT)")
	fs.StringVar(&c.Mode, "mode", c.Mode, "conversation keeps every exchange, single shows only the latest (env CHAT_MODE)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: trace, debug, info, warn, error (env LOG_LEVEL)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Write logs to this rotating file instead of stderr (env LOG_FILE)")
	fs.StringVar(&c.File, "config", c.File, "YAML config file; explicit flags still win (env CHAT_CONFIG)")
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
