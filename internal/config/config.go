package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/timmy/socialkit/internal/logger"
)

// ErrMissingCredential is returned by Load when no generation API key is configured.
var ErrMissingCredential = errors.New("missing generation service API key (set GEMINI_API_KEY or API_KEY)")

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Session   SessionConfig   `mapstructure:"session"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
	EventBuffer     int           `mapstructure:"event_buffer"`
}

// StorageConfig describes the optional object store used for kit export.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // local, s3, r2, s3compatible; empty auto-detects
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	LocalDir  string `mapstructure:"local_dir"`
}

type TemplatesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Width   int           `mapstructure:"width"`
	Height  int           `mapstructure:"height"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	FileOnly   bool   `mapstructure:"file_only"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggerOptions converts the log section into logger options.
func (c LogConfig) LoggerOptions(serviceName string) logger.Options {
	return logger.Options{
		Level:       c.Level,
		Format:      c.Format,
		ServiceName: serviceName,
		File:        c.File,
		FileOnly:    c.FileOnly,
		MaxSizeMB:   c.MaxSizeMB,
		MaxBackups:  c.MaxBackups,
		MaxAgeDays:  c.MaxAgeDays,
		Compress:    c.Compress,
	}
}

// Load reads configuration from an optional YAML file, .env and the environment.
// Parameters:
//   - configPath: explicit config file; empty searches ./configs and the working directory.
//
// Returns:
//   - *Config: populated configuration.
//   - error: ErrMissingCredential when no API key is set, or a read/decode error.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and commonly overridden values get explicit names.
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	_ = v.BindEnv("gemini.strategy_model", "STRATEGY_MODEL")
	_ = v.BindEnv("gemini.render_model", "RENDER_MODEL")
	_ = v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	_ = v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	_ = v.BindEnv("server.port", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Gemini.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("gemini.base_url", DefaultGeminiBaseURL)
	v.SetDefault("gemini.strategy_model", DefaultStrategyModel)
	v.SetDefault("gemini.render_model", DefaultRenderModel)
	v.SetDefault("gemini.timeout", 120*time.Second)

	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.janitor_interval", 5*time.Minute)
	v.SetDefault("session.event_buffer", 32)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "social-kits")
	v.SetDefault("storage.local_dir", "./data/kits")

	v.SetDefault("templates.base_url", "https://picsum.photos")
	v.SetDefault("templates.width", 1200)
	v.SetDefault("templates.height", 800)
	v.SetDefault("templates.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
}
