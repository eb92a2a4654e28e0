package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string        `mapstructure:"app_name"`
	Env            string        `mapstructure:"app_env"`
	LogLevel       string        `mapstructure:"log_level"`
	BaseURL        string        `mapstructure:"base_url"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
	EndpointsFile  string        `mapstructure:"endpoints_file"`
	NotifiersFile  string        `mapstructure:"notifiers_file"`

	SessionStore  string `mapstructure:"session_store"`
	BBoltPath     string `mapstructure:"bbolt_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`

	MockAddr            string        `mapstructure:"mock_addr"`
	MockSecret          string        `mapstructure:"mock_secret"`
	MockTokenTTLSeconds int64         `mapstructure:"mock_token_ttl_seconds"`
	MockTokenTTL        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-api-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "http://localhost:8089")
	v.SetDefault("timeout_seconds", 60)
	v.SetDefault("endpoints_file", "")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("session_store", "bbolt")
	v.SetDefault("bbolt_path", "./data/session.db")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "samvad:session:")
	v.SetDefault("mock_addr", ":8089")
	v.SetDefault("mock_secret", "samvad-mock-secret")
	v.SetDefault("mock_token_ttl_seconds", 3600)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	cfg.MockTokenTTL = time.Duration(cfg.MockTokenTTLSeconds) * time.Second

	return &cfg, nil
}

func (cfg *Config) validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (must be an absolute URL)", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	if cfg.MockTokenTTLSeconds <= 0 {
		return fmt.Errorf("invalid mock_token_ttl_seconds (must be positive seconds)")
	}

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	switch cfg.SessionStore {
	case "", "memory", "none", "disabled":
	case "bbolt":
		if strings.TrimSpace(cfg.BBoltPath) == "" {
			return fmt.Errorf("bbolt_path is required when session_store=bbolt")
		}
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return fmt.Errorf("redis_addr is required when session_store=redis")
		}
		if cfg.RedisDB < 0 {
			return fmt.Errorf("invalid redis_db %d", cfg.RedisDB)
		}
	default:
		return fmt.Errorf("unsupported session_store %q", cfg.SessionStore)
	}
	return nil
}
