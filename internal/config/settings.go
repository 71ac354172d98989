package config

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Default run values not covered by a phase preset
const (
	DefaultLetterConcurrency = 2
	DefaultLetterMaxWords    = 220
	DefaultLetterMaxRetries  = 3
	DefaultTask              = "Finde passende Aussteller (Makerspaces, FabLabs, Repair Cafés, Hackerspaces) für die Maker Faire."
)

// Settings is the immutable run record built once at startup and passed to every component.
type Settings struct {
	Task   string `validate:"required"`
	Phase  Phase
	Region Region `validate:"-"`
	Gates  GateRules

	AcceptThreshold   float64 `validate:"gt=0,lte=1"`
	MaxIterations     int     `validate:"gte=1"`
	ResultsPerQuery   int     `validate:"gte=1,lte=50"`
	LettersPerRun     int     `validate:"gte=0"`
	TargetCount       int     `validate:"gte=1"`
	LetterConcurrency int     `validate:"gte=1"`
	LetterMaxWords    int     `validate:"gte=50"`
	LetterMaxRetries  int     `validate:"gte=1"`

	IdentityPath  string `validate:"required"`
	RegistryPath  string `validate:"required"`
	BlacklistPath string `validate:"required"`
	SnapshotPath  string `validate:"required"`
	NotesPath     string `validate:"required"`
	LettersDir    string `validate:"required"`
	EnrichmentDir string `validate:"required"`
	CachePath     string `validate:"required"`
	ResumeFrom    string

	LLMProvider     string   `validate:"oneof=gemini cohere"`
	SearchProviders []string `validate:"dive,oneof=google duckduckgo feeds web"`
	FeedURLs        []string `validate:"dive,url"`

	UseBrowser     bool
	Verbose        bool
	ExportDocx     bool
	SkipEnrichment bool
	LanguageGate   bool
}

// Defaults returns the file layout and backend choices used when nothing is configured.
func Defaults(baseDir string) Config {
	if baseDir == "" {
		baseDir = "."
	}
	staging := filepath.Join(baseDir, "data", "staging")
	return Config{
		Task:              DefaultTask,
		Phase:             DefaultPhase,
		Region:            DefaultRegion,
		LetterConcurrency: DefaultLetterConcurrency,
		LetterMaxWords:    DefaultLetterMaxWords,
		LetterMaxRetries:  DefaultLetterMaxRetries,
		IdentityPath:      filepath.Join(baseDir, "config", "identity.yaml"),
		RegistryPath:      filepath.Join(staging, "org_registry.json"),
		BlacklistPath:     filepath.Join(staging, "blacklist.json"),
		SnapshotPath:      filepath.Join(staging, "candidates_selected.json"),
		NotesPath:         filepath.Join(staging, "research_notes.md"),
		LettersDir:        filepath.Join(baseDir, "outputs", "letters"),
		EnrichmentDir:     filepath.Join(staging, "enrichment"),
		CachePath:         filepath.Join(staging, "cache.db"),
		LLMProvider:       "gemini",
		SearchProviders:   []string{"google", "duckduckgo"},
	}
}

// Resolve applies the phase preset and region profile, then validates the result.
// Explicit numeric values in cfg win over the preset.
func Resolve(cfg Config) (Settings, error) {
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	merged := cfg.MergeWithDefaults(Defaults(""))

	phase, ok := Phases[merged.Phase]
	if !ok {
		return Settings{}, fmt.Errorf("config error: unknown phase %q", merged.Phase)
	}
	region, ok := Regions[merged.Region]
	if !ok {
		return Settings{}, fmt.Errorf("config error: unknown region %q", merged.Region)
	}

	s := Settings{
		Task:              merged.Task,
		Phase:             phase,
		Region:            region,
		Gates:             DefaultGateRules(),
		AcceptThreshold:   phase.AcceptThreshold,
		MaxIterations:     phase.MaxIterations,
		ResultsPerQuery:   phase.ResultsPerQuery,
		LettersPerRun:     phase.LettersPerRun,
		LetterConcurrency: merged.LetterConcurrency,
		LetterMaxWords:    merged.LetterMaxWords,
		LetterMaxRetries:  merged.LetterMaxRetries,
		IdentityPath:      merged.IdentityPath,
		RegistryPath:      merged.RegistryPath,
		BlacklistPath:     merged.BlacklistPath,
		SnapshotPath:      merged.SnapshotPath,
		NotesPath:         merged.NotesPath,
		LettersDir:        merged.LettersDir,
		EnrichmentDir:     merged.EnrichmentDir,
		CachePath:         merged.CachePath,
		ResumeFrom:        merged.ResumeFrom,
		LLMProvider:       merged.LLMProvider,
		SearchProviders:   merged.SearchProviders,
		FeedURLs:          merged.FeedURLs,
		UseBrowser:        merged.UseBrowser,
		Verbose:           merged.Verbose,
		ExportDocx:        merged.ExportDocx,
		SkipEnrichment:    merged.SkipEnrichment,
		LanguageGate:      merged.LanguageGate,
	}

	if merged.AcceptThreshold > 0 {
		s.AcceptThreshold = merged.AcceptThreshold
	}
	if merged.MaxIterations > 0 {
		s.MaxIterations = merged.MaxIterations
	}
	if merged.ResultsPerQuery > 0 {
		s.ResultsPerQuery = merged.ResultsPerQuery
	}
	if merged.LettersPerRun > 0 {
		s.LettersPerRun = merged.LettersPerRun
	}

	s.TargetCount = merged.TargetCount
	if s.TargetCount == 0 {
		s.TargetCount = max(s.LettersPerRun, 1)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate validates the Settings using the validator.
func (s *Settings) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
