package gemini

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joseph-ayodele/uniformat-db/constants"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL string        // default https://generativelanguage.googleapis.com/v1beta
	Model   string        // e.g., "gemini-2.5-flash"
	Timeout time.Duration // http client timeout
}

// Client holds its credential; build one per process and reuse it.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Model returns the configured model id.
func (c *Client) Model() string {
	return c.cfg.Model
}
