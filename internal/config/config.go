package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabaseDriver                string        `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string        `mapstructure:"DATABASE_PATH"`
	DatabaseURL                   string        `mapstructure:"DATABASE_URL"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	LogLevel                      string        `mapstructure:"LOG_LEVEL"`
	LogDev                        bool          `mapstructure:"LOG_DEV"`
	ReconcileInterval             time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	MedalCatalogPath              string        `mapstructure:"MEDAL_CATALOG_PATH"`
	ModerationExtraWords          []string      `mapstructure:"MODERATION_EXTRA_WORDS"`
	EnableCORS                    bool          `mapstructure:"ENABLE_CORS"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func LoadConfig() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", DriverSQLite)
	viper.SetDefault("DATABASE_PATH", "devotional.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RECONCILE_INTERVAL", "10m")
	viper.SetDefault("MODERATION_EXTRA_WORDS", []string{})

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("LOG_DEV")
	viper.BindEnv("MEDAL_CATALOG_PATH")
	viper.BindEnv("MODERATION_EXTRA_WORDS")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return &config
}

// Validate reports settings that would only fail later at connect time.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for driver %q", c.DatabaseDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive, got %s", c.ReconcileInterval)
	}
	return nil
}
