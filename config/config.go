package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process-wide settings. It is loaded once at startup
// and passed by injection; nothing reads viper after Load returns.
type Config struct {
	HTTPPort        int    `mapstructure:"http_port"`
	LogLevel        string `mapstructure:"log_level"`
	ServiceName     string `mapstructure:"service_name"`
	DatabaseURL     string `mapstructure:"database_url"`
	JwtSecret       string `mapstructure:"jwt_secret"`
	JwtAlgorithm    string `mapstructure:"jwt_algorithm"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
	UploadDir       string `mapstructure:"upload_dir"`
	StaticPrefix    string `mapstructure:"static_prefix"`
	SeedData        bool   `mapstructure:"seed_data"`
}

// TokenTTL returns the configured default token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Load reads config.yaml (working dir or ./config) with environment
// overrides prefixed BOOKSHELF_, e.g. BOOKSHELF_JWT_SECRET.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("BOOKSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "bookshelf")
	v.SetDefault("jwt_algorithm", "HS256")
	v.SetDefault("token_ttl_minutes", 60)
	v.SetDefault("upload_dir", "uploads/books")
	v.SetDefault("static_prefix", "/uploads/")
	v.SetDefault("seed_data", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No file is fine; defaults and environment carry the load.
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.JwtSecret == "" {
		return nil, fmt.Errorf("jwt_secret must be set")
	}
	if !strings.HasSuffix(cfg.StaticPrefix, "/") {
		cfg.StaticPrefix += "/"
	}
	return cfg, nil
}
