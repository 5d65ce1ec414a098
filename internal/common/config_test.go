package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "uniformat.db", cfg.Database.DSN)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.LLM.InitialDelay)
	assert.Equal(t, 5, cfg.Pipeline.BatchSize)
	assert.Equal(t, "native", cfg.PDF.Backend)
	require.NoError(t, cfg.Validate(true))
}

func TestLoadConfig_FileEnvAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uniformat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  dsn: from-file.db
llm:
  provider: openai
  initial_delay: 2s
pipeline:
  batch_size: 3
`), 0o644))
	t.Setenv("UNIFORMAT_PIPELINE_BATCH_PAUSE", "6s")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadConfig(path, map[string]any{"database.dsn": "from-flag.db"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag.db", cfg.Database.DSN)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, 2*time.Second, cfg.LLM.InitialDelay)
	assert.Equal(t, 3, cfg.Pipeline.BatchSize)
	assert.Equal(t, 6*time.Second, cfg.Pipeline.BatchPause)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{DSN: "u.db"},
			LLM:      LLMConfig{Provider: "gemini", APIKey: "k", MaxRetries: 5},
			PDF:      PDFConfig{Backend: "native"},
			Pipeline: PipelineConfig{BatchSize: 5},
		}
	}
	require.NoError(t, base().Validate(true))

	cases := map[string]func(c *Config){
		"no dsn":       func(c *Config) { c.Database.DSN = "" },
		"bad provider": func(c *Config) { c.LLM.Provider = "bard" },
		"no key":       func(c *Config) { c.LLM.APIKey = "" },
		"zero retries": func(c *Config) { c.LLM.MaxRetries = 0 },
		"bad backend":  func(c *Config) { c.PDF.Backend = "ocr" },
		"zero batch":   func(c *Config) { c.Pipeline.BatchSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			err := c.Validate(true)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, "CONFIG_ERROR", ErrorCode(err))
		})
	}

	c := base()
	c.LLM.APIKey = ""
	assert.NoError(t, c.Validate(false))
}
