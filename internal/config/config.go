// Package config loads resumo settings from defaults, an optional YAML file,
// a .env file and RESUMO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g.
	// RESUMO_MODEL_BACKEND.
	EnvPrefix = "RESUMO"

	configName = "resumo"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr                  string        `mapstructure:"addr" validate:"required"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests" validate:"gte=1"`
}

// SummarizationConfig holds request defaults and auto mode thresholds.
type SummarizationConfig struct {
	DefaultMaxLength     int    `mapstructure:"default_max_length" validate:"lte=1000,gtfield=DefaultMinLength"`
	DefaultMinLength     int    `mapstructure:"default_min_length" validate:"gte=10"`
	MaxTextLength        int    `mapstructure:"max_text_length" validate:"gt=0"`
	AbstractiveThreshold int    `mapstructure:"abstractive_threshold" validate:"gte=0"`
	ExtractiveThreshold  int    `mapstructure:"extractive_threshold" validate:"gtfield=AbstractiveThreshold"`
	TieBreak             string `mapstructure:"tie_break" validate:"oneof=extractive abstractive"`
	Language             string `mapstructure:"language" validate:"oneof=portuguese english spanish french russian swedish norwegian hungarian"`
	RankWithStems        bool   `mapstructure:"rank_with_stems"`
}

// CacheConfig sizes the shared result cache.
type CacheConfig struct {
	MaxSize int           `mapstructure:"max_size" validate:"gte=1"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// ModelConfig selects the generative backend.
type ModelConfig struct {
	Backend        string `mapstructure:"backend" validate:"oneof=ollama openai anthropic mock"`
	Name           string `mapstructure:"name"`
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key" validate:"required_if=Backend anthropic"`
	MaxInputLength int    `mapstructure:"max_input_length" validate:"gt=50"`
	TokenizerFile  string `mapstructure:"tokenizer_file"`
}

// HistoryConfig configures the summary history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path" validate:"required_if=Enabled true"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Dir   string `mapstructure:"dir"`
}

// Config is the full resumo configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Summarization SummarizationConfig `mapstructure:"summarization"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Model         ModelConfig         `mapstructure:"model"`
	History       HistoryConfig       `mapstructure:"history"`
	Log           LogConfig           `mapstructure:"log"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:                  "localhost:8080",
			RequestTimeout:        300 * time.Second,
			MaxConcurrentRequests: 10,
		},
		Summarization: SummarizationConfig{
			DefaultMaxLength:     150,
			DefaultMinLength:     30,
			MaxTextLength:        50000,
			AbstractiveThreshold: 500,
			ExtractiveThreshold:  1000,
			TieBreak:             "extractive",
			Language:             "portuguese",
		},
		Cache: CacheConfig{
			MaxSize: 50,
			TTL:     30 * time.Minute,
		},
		Model: ModelConfig{
			Backend:        "ollama",
			Name:           "llama3.2",
			MaxInputLength: 512,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDir is the directory holding resumo's config, logs and history.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".resumo"
	}

	return filepath.Join(home, ".resumo")
}

// Load builds the configuration. An explicit path must exist; without one
// ./resumo.yaml and ~/.resumo/resumo.yaml are tried. bind, if set, runs
// before unmarshalling so callers can attach command line flags.
func Load(path string, bind func(v *viper.Viper) error) (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("unable to read .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("unable to read config: %w",
				err)
		}
	}

	if bind != nil {
		if err := bind(v); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.fillDerived()

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cfg.
func Validate(cfg Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// fillDerived resolves values that default from other settings.
func (c *Config) fillDerived() {
	if c.History.Enabled && c.History.DBPath == "" {
		c.History.DBPath = filepath.Join(DefaultDir(), "history.db")
	}
	if c.Log.Dir == "" {
		c.Log.Dir = filepath.Join(DefaultDir(), "logs")
	}

	if c.Model.APIKey == "" {
		switch c.Model.Backend {
		case "anthropic":
			c.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// setDefaults registers every key so AutomaticEnv can see it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.max_concurrent_requests",
		d.Server.MaxConcurrentRequests)

	s := d.Summarization
	v.SetDefault("summarization.default_max_length", s.DefaultMaxLength)
	v.SetDefault("summarization.default_min_length", s.DefaultMinLength)
	v.SetDefault("summarization.max_text_length", s.MaxTextLength)
	v.SetDefault("summarization.abstractive_threshold",
		s.AbstractiveThreshold)
	v.SetDefault("summarization.extractive_threshold",
		s.ExtractiveThreshold)
	v.SetDefault("summarization.tie_break", s.TieBreak)
	v.SetDefault("summarization.language", s.Language)
	v.SetDefault("summarization.rank_with_stems", s.RankWithStems)

	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("model.backend", d.Model.Backend)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.base_url", d.Model.BaseURL)
	v.SetDefault("model.api_key", d.Model.APIKey)
	v.SetDefault("model.max_input_length", d.Model.MaxInputLength)
	v.SetDefault("model.tokenizer_file", d.Model.TokenizerFile)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db_path", d.History.DBPath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dir", d.Log.Dir)
}
