package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	RefreshLoopSeconds int64         `mapstructure:"refresh_loop_interval"`
	RefreshLoop        time.Duration `mapstructure:"-"`

	CacheBackend  string `mapstructure:"cache_backend"`
	BBoltPath     string `mapstructure:"bbolt_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	CacheTTLSeconds       int64         `mapstructure:"cache_ttl_seconds"`
	CacheRetentionSeconds int64         `mapstructure:"cache_retention_seconds"`
	CacheCleanupSeconds   int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL              time.Duration `mapstructure:"-"`
	CacheRetention        time.Duration `mapstructure:"-"`
	CacheCleanupInterval  time.Duration `mapstructure:"-"`

	MaxItems            int           `mapstructure:"max_items"`
	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "trendbeat-source-hub")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("refresh_loop_interval", 600) // seconds
	v.SetDefault("cache_backend", "bbolt")
	v.SetDefault("bbolt_path", "./data/source-cache.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl_seconds", int64((30*time.Minute)/time.Second))
	v.SetDefault("cache_retention_seconds", int64(time.Hour/time.Second))
	v.SetDefault("cache_cleanup_interval_seconds", int64((10*time.Minute)/time.Second))
	v.SetDefault("max_items", 30)
	v.SetDefault("fetch_timeout_seconds", 15)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RefreshLoopSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_loop_interval (must be positive seconds)")
	}
	cfg.RefreshLoop = time.Duration(cfg.RefreshLoopSeconds) * time.Second

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.CacheRetentionSeconds < cfg.CacheTTLSeconds {
		return nil, fmt.Errorf("cache_retention_seconds must be >= cache_ttl_seconds")
	}
	if cfg.CacheCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CacheRetention = time.Duration(cfg.CacheRetentionSeconds) * time.Second
	cfg.CacheCleanupInterval = time.Duration(cfg.CacheCleanupSeconds) * time.Second

	if cfg.MaxItems <= 0 {
		return nil, fmt.Errorf("invalid max_items (must be positive)")
	}
	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second

	return &cfg, nil
}
