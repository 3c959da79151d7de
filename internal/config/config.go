package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL     = "http://127.0.0.1:5000/api"
	defaultHTTPTimeout = 15 * time.Second
	defaultHistoryPath = "questify.db"
)

type Config struct {
	BaseURL     string
	Token       string
	HTTPTimeout time.Duration
	HistoryPath string
}

// Load reads configuration from the environment, merging in a .env file when
// one exists. Missing values fall back to defaults; the token stays empty
// until login.
func Load() (Config, error) {
	// A missing .env is fine; explicit env vars win either way.
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:     defaultBaseURL,
		HTTPTimeout: defaultHTTPTimeout,
		HistoryPath: defaultHistoryPath,
	}

	if v := strings.TrimSpace(os.Getenv("QUESTIFY_API_URL")); v != "" {
		cfg.BaseURL = v
	}
	cfg.Token = strings.TrimSpace(os.Getenv("QUESTIFY_TOKEN"))
	if v := strings.TrimSpace(os.Getenv("QUESTIFY_HISTORY_DB")); v != "" {
		cfg.HistoryPath = v
	}
	if v := strings.TrimSpace(os.Getenv("QUESTIFY_TIMEOUT")); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid QUESTIFY_TIMEOUT %q: %w", v, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("QUESTIFY_TIMEOUT must be positive, got %q", v)
		}
		cfg.HTTPTimeout = timeout
	}

	return cfg, nil
}
