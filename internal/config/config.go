package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Webhook     WebhookConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path string
}

type WebhookConfig struct {
	Secret string
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("payhook_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("payhook_port", 3000)
	v.SetDefault("payhook_db_path", "data/payhook")
	v.SetDefault("payhook_webhook_secret", "")
	v.SetDefault("payhook_rate_limit_max", 100)
	v.SetDefault("payhook_rate_limit_window", "15m")

	env := resolveEnvironment(v)
	port := v.GetInt("payhook_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PAYHOOK_PORT: %d", port)
	}

	maxRequests := v.GetInt("payhook_rate_limit_max")
	if maxRequests <= 0 {
		maxRequests = 100
	}
	if maxRequests > 100000 {
		maxRequests = 100000
	}

	window, err := time.ParseDuration(strings.TrimSpace(v.GetString("payhook_rate_limit_window")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PAYHOOK_RATE_LIMIT_WINDOW: %w", err)
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path: strings.TrimSpace(v.GetString("payhook_db_path")),
		},
		Webhook: WebhookConfig{
			Secret: strings.TrimSpace(v.GetString("payhook_webhook_secret")),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: maxRequests,
			Window:      window,
		},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/payhook"
	}
	if !cfg.IsLocalDevelopment() && cfg.Webhook.Secret == "" {
		return Config{}, fmt.Errorf("PAYHOOK_WEBHOOK_SECRET is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = "payhook-local-dev"
	}

	return cfg, nil
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"payhook_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
