package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	ShareSecret   string   `mapstructure:"SHARE_SECRET"`
	ShareBaseURL  string   `mapstructure:"SHARE_BASE_URL"`
	ImageDir      string   `mapstructure:"IMAGE_DIR"`
	ImageBaseURL  string   `mapstructure:"IMAGE_BASE_URL"`
	MigrationsDir string   `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SHARE_BASE_URL", "http://localhost:3000")
	v.SetDefault("IMAGE_DIR", "./uploads")
	v.SetDefault("IMAGE_BASE_URL", "/images")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("SHARE_SECRET")
	v.BindEnv("SHARE_BASE_URL")
	v.BindEnv("IMAGE_DIR")
	v.BindEnv("IMAGE_BASE_URL")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Share links are
// signed tokens, so a production deployment must supply its own signing
// secret instead of the development fallback.
func (c *Config) Validate() error {
	if c.IsProduction() && c.ShareSecret == "" {
		return fmt.Errorf("SHARE_SECRET is required in production")
	}
	if c.ShareSecret != "" && len(c.ShareSecret) < 32 {
		return fmt.Errorf("SHARE_SECRET must be at least 32 characters, got %d", len(c.ShareSecret))
	}
	return nil
}
