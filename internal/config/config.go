package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	DatabasePath    string
	RedisURL        string
	OpenAIAPIKey    string
	OpenAIModel     string
	AITimeout       time.Duration
	AIMaxRetries    int
	MaxHistoryTurns int
	CloseOnSignOff  bool
	ReportCacheTTL  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIBLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Quibly API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.path", "quibly.db")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("tutor.max_history_turns", 50)
	v.SetDefault("tutor.close_on_sign_off", false)
	v.SetDefault("report.cache_ttl", "10m")

	timeout, err := time.ParseDuration(v.GetString("ai.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai timeout: %w", err)
	}

	ttl, err := time.ParseDuration(v.GetString("report.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		DatabasePath:    v.GetString("database.path"),
		RedisURL:        v.GetString("redis.url"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		OpenAIModel:     v.GetString("openai_model"),
		AITimeout:       timeout,
		AIMaxRetries:    v.GetInt("ai.max_retries"),
		MaxHistoryTurns: v.GetInt("tutor.max_history_turns"),
		CloseOnSignOff:  v.GetBool("tutor.close_on_sign_off"),
		ReportCacheTTL:  ttl,
	}

	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("openai api key must be provided")
	}

	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = 50
	}

	return cfg, nil
}
