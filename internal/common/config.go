package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/uniformat-db/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN         string        `mapstructure:"dsn"` // sqlite file path, file: URI, or postgres:// URL
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"` // gemini | openai
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
}

// PDFConfig holds PDF extraction configuration
type PDFConfig struct {
	Backend   string `mapstructure:"backend"` // native | pdftotext
	Pdftotext string `mapstructure:"pdftotext"`
	Pdfinfo   string `mapstructure:"pdfinfo"`
}

// PipelineConfig holds defaults for the batch stages
type PipelineConfig struct {
	Sheet      string        `mapstructure:"sheet"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchPause time.Duration `mapstructure:"batch_pause"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

const envPrefix = "UNIFORMAT"

// LoadConfig loads configuration from an optional YAML file, a .env file and the environment.
// Environment keys use the UNIFORMAT_ prefix, e.g. UNIFORMAT_DATABASE_DSN. Overrides (dotted keys,
// typically from command-line flags) win over every other source.
func LoadConfig(path string, overrides map[string]any) (*Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Provider-native credential variables win only when nothing else set a key.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if cfg.LLM.Model == "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.Model = constants.DefaultOpenAIModel
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = constants.DefaultGeminiModel
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "uniformat.db")
	v.SetDefault("database.dial_timeout", 3*time.Second)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.max_retries", constants.DefaultMaxRetries)
	v.SetDefault("llm.initial_delay", constants.DefaultInitialDelay)

	v.SetDefault("pdf.backend", "native")
	v.SetDefault("pdf.pdftotext", "pdftotext")
	v.SetDefault("pdf.pdfinfo", "pdfinfo")

	v.SetDefault("pipeline.sheet", "")
	v.SetDefault("pipeline.batch_size", constants.DefaultDescribeBatchSize)
	v.SetDefault("pipeline.batch_pause", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate validates the loaded configuration. requireLLM is false for commands that never call the model.
func (c *Config) Validate(requireLLM bool) error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database.dsn is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown llm.provider %q", c.LLM.Provider), ErrInvalidInput)
	}
	if requireLLM && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "an API key is required (llm.api_key, GEMINI_API_KEY or OPENAI_API_KEY)", ErrInvalidInput)
	}
	if c.LLM.MaxRetries < 1 {
		return NewAppError("CONFIG_ERROR", "llm.max_retries must be at least 1", ErrInvalidInput)
	}
	switch c.PDF.Backend {
	case "native", "pdftotext":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown pdf.backend %q", c.PDF.Backend), ErrInvalidInput)
	}
	if c.Pipeline.BatchSize < 1 {
		return NewAppError("CONFIG_ERROR", "pipeline.batch_size must be at least 1", ErrInvalidInput)
	}
	return nil
}
