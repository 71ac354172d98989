package main

import (
	"fmt"
	"os"

	"github.com/jonathan/outreach-scout/internal/config"
)

// loadConfig reads the optional config file and fills unset values from defaults and the
// environment
func loadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg, nil
}

// applyEnv fills credentials that were not configured from the environment
func applyEnv(cfg *config.Config) {
	envDefault(&cfg.APIKey, "GEMINI_API_KEY")
	envDefault(&cfg.CohereAPIKey, "COHERE_API_KEY")
	envDefault(&cfg.GoogleAPIKey, "GOOGLE_API_KEY")
	envDefault(&cfg.GoogleCX, "GOOGLE_CX")
}

func envDefault(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}
