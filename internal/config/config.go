// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Run shape
	Task   string `json:"task,omitempty"`   // Free-text task handed to the planner
	Phase  string `json:"phase,omitempty"`  // explore | refine | acquire
	Region string `json:"region,omitempty"` // Region profile name

	// Numeric overrides of the phase preset
	AcceptThreshold   float64 `json:"accept_threshold,omitempty"`
	MaxIterations     int     `json:"max_iterations,omitempty"`
	ResultsPerQuery   int     `json:"results_per_query,omitempty"`
	LettersPerRun     int     `json:"letters_per_run,omitempty"`
	LetterConcurrency int     `json:"letter_concurrency,omitempty"`
	LetterMaxWords    int     `json:"letter_max_words,omitempty"`
	LetterMaxRetries  int     `json:"letter_max_retries,omitempty"`
	TargetCount       int     `json:"target_count,omitempty"` // Accepted candidates wanted; defaults to letters per run

	// Paths
	IdentityPath  string `json:"identity_path,omitempty"`
	RegistryPath  string `json:"registry_path,omitempty"`
	BlacklistPath string `json:"blacklist_path,omitempty"`
	SnapshotPath  string `json:"snapshot_path,omitempty"`
	NotesPath     string `json:"notes_path,omitempty"`
	LettersDir    string `json:"letters_dir,omitempty"`
	EnrichmentDir string `json:"enrichment_dir,omitempty"`
	CachePath     string `json:"cache_path,omitempty"` // sqlite cache database
	ResumeFrom    string `json:"resume_from,omitempty"`

	// Backends
	LLMProvider     string   `json:"llm_provider,omitempty"` // gemini | cohere
	APIKey          string   `json:"api_key,omitempty"`      // Gemini API key
	CohereAPIKey    string   `json:"cohere_api_key,omitempty"`
	SearchProviders []string `json:"search_providers,omitempty"` // google, duckduckgo, feeds, web
	GoogleAPIKey    string   `json:"google_api_key,omitempty"`
	GoogleCX        string   `json:"google_cx,omitempty"`
	FeedURLs        []string `json:"feed_urls,omitempty"`

	// Behavior
	UseBrowser     bool `json:"use_browser,omitempty"`     // Use headless browser for SPA sites
	Verbose        bool `json:"verbose,omitempty"`         // Print detailed debug information
	ExportDocx     bool `json:"export_docx,omitempty"`     // Also write letters as .docx
	SkipEnrichment bool `json:"skip_enrichment,omitempty"` // Do not call the company lookup
	LanguageGate   bool `json:"language_gate,omitempty"`   // Reject snippets confidently outside the allowed languages
}

// knownProviders are the accepted search provider names
var knownProviders = []string{"google", "duckduckgo", "feeds", "web"}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values are checked later on the resolved Settings.
func (c *Config) Validate() error {
	if c.Phase != "" {
		if _, ok := Phases[c.Phase]; !ok {
			return fmt.Errorf("config error: unknown phase %q", c.Phase)
		}
	}
	if c.Region != "" {
		if _, ok := Regions[c.Region]; !ok {
			return fmt.Errorf("config error: unknown region %q", c.Region)
		}
	}

	if c.AcceptThreshold < 0 || c.AcceptThreshold > 1 {
		return fmt.Errorf("config error: 'accept_threshold' must be between 0 and 1")
	}
	if c.MaxIterations < 0 || c.ResultsPerQuery < 0 || c.LettersPerRun < 0 {
		return fmt.Errorf("config error: iteration, result and letter counts must be non-negative")
	}
	if c.LetterConcurrency < 0 || c.LetterMaxWords < 0 || c.LetterMaxRetries < 0 {
		return fmt.Errorf("config error: letter settings must be non-negative")
	}

	for _, p := range c.SearchProviders {
		if !slices.Contains(knownProviders, p) {
			return fmt.Errorf("config error: unknown search provider %q", p)
		}
	}
	if c.LLMProvider != "" && c.LLMProvider != "gemini" && c.LLMProvider != "cohere" {
		return fmt.Errorf("config error: 'llm_provider' must be gemini or cohere")
	}

	if c.ResumeFrom != "" {
		if _, err := os.Stat(c.ResumeFrom); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume snapshot not found: %s", c.ResumeFrom)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.Task, defaults.Task)
	mergeString(&result.Phase, defaults.Phase)
	mergeString(&result.Region, defaults.Region)
	mergeString(&result.IdentityPath, defaults.IdentityPath)
	mergeString(&result.RegistryPath, defaults.RegistryPath)
	mergeString(&result.BlacklistPath, defaults.BlacklistPath)
	mergeString(&result.SnapshotPath, defaults.SnapshotPath)
	mergeString(&result.NotesPath, defaults.NotesPath)
	mergeString(&result.LettersDir, defaults.LettersDir)
	mergeString(&result.EnrichmentDir, defaults.EnrichmentDir)
	mergeString(&result.CachePath, defaults.CachePath)
	mergeString(&result.ResumeFrom, defaults.ResumeFrom)
	mergeString(&result.LLMProvider, defaults.LLMProvider)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.CohereAPIKey, defaults.CohereAPIKey)
	mergeString(&result.GoogleAPIKey, defaults.GoogleAPIKey)
	mergeString(&result.GoogleCX, defaults.GoogleCX)

	// Int fields: use default if zero
	mergeInt(&result.MaxIterations, defaults.MaxIterations)
	mergeInt(&result.ResultsPerQuery, defaults.ResultsPerQuery)
	mergeInt(&result.LettersPerRun, defaults.LettersPerRun)
	mergeInt(&result.LetterConcurrency, defaults.LetterConcurrency)
	mergeInt(&result.LetterMaxWords, defaults.LetterMaxWords)
	mergeInt(&result.LetterMaxRetries, defaults.LetterMaxRetries)
	mergeInt(&result.TargetCount, defaults.TargetCount)

	if result.AcceptThreshold == 0 {
		result.AcceptThreshold = defaults.AcceptThreshold
	}

	if len(result.SearchProviders) == 0 {
		result.SearchProviders = defaults.SearchProviders
	}
	if len(result.FeedURLs) == 0 {
		result.FeedURLs = defaults.FeedURLs
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
