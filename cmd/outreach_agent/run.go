package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/enrichment"
	"github.com/jonathan/outreach-scout/internal/fetch"
	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/pipeline"
	"github.com/jonathan/outreach-scout/internal/search"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Search for exhibitors and write invitation letters",
	Long: `Plans the search, runs the acquisition loop (search, gates, judgment, directory expansion),
writes invitation letters for accepted candidates and persists snapshot, notes, registry and blacklist.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.
Use --resume to re-queue letters for the accepted candidates of an earlier snapshot without searching.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runTask           string
	runPhase          string
	runRegion         string
	runTarget         int
	runMaxIterations  int
	runLetters        int
	runThreshold      float64
	runResume         string
	runIdentity       string
	runLLMProvider    string
	runAPIKey         string
	runSearchBackends []string
	runFeeds          []string
	runUseBrowser     bool
	runVerbose        bool
	runExportDocx     bool
	runSkipEnrichment bool
	runLanguageGate   bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVar(&runTask, "task", "", "Task description handed to the planner")
	runCommand.Flags().StringVarP(&runPhase, "phase", "p", "", "Phase preset: explore, refine or acquire")
	runCommand.Flags().StringVarP(&runRegion, "region", "r", "", "Region profile: luebeck, north or germany")
	runCommand.Flags().IntVarP(&runTarget, "target", "n", 0, "Number of accepted candidates wanted")
	runCommand.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Override the phase's iteration limit")
	runCommand.Flags().IntVar(&runLetters, "letters", 0, "Override the phase's letters per run")
	runCommand.Flags().Float64Var(&runThreshold, "threshold", 0, "Override the phase's acceptance threshold")
	runCommand.Flags().StringVar(&runResume, "resume", "", "Snapshot to resume from instead of searching")
	runCommand.Flags().StringVar(&runIdentity, "identity", "", "Path to the organizer identity YAML")
	runCommand.Flags().StringVar(&runLLMProvider, "llm", "", "LLM provider: gemini or cohere")
	runCommand.Flags().StringSliceVar(&runSearchBackends, "search", nil, "Search backends in order (google, duckduckgo, feeds, web)")
	runCommand.Flags().StringSliceVar(&runFeeds, "feed", nil, "RSS/Atom feed URL for the feeds backend (repeatable)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print plan, accepted candidates and run summary")
	runCommand.Flags().BoolVar(&runExportDocx, "docx", false, "Also write letters as .docx")
	runCommand.Flags().BoolVar(&runSkipEnrichment, "skip-enrichment", false, "Do not query the company register")
	runCommand.Flags().BoolVar(&runLanguageGate, "language-gate", false, "Reject snippets confidently in other languages")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY / COHERE_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "LLM API key (optional, defaults to GEMINI_API_KEY or COHERE_API_KEY)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.Named("cli")

	// Step 1: Load config file if provided
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	// Step 2: Apply CLI overrides, only for flags that were explicitly set
	flags := cmd.Flags()
	if flags.Changed("task") {
		cfg.Task = runTask
	}
	if flags.Changed("phase") {
		cfg.Phase = runPhase
	}
	if flags.Changed("region") {
		cfg.Region = runRegion
	}
	if flags.Changed("target") {
		cfg.TargetCount = runTarget
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = runMaxIterations
	}
	if flags.Changed("letters") {
		cfg.LettersPerRun = runLetters
	}
	if flags.Changed("threshold") {
		cfg.AcceptThreshold = runThreshold
	}
	if flags.Changed("resume") {
		cfg.ResumeFrom = runResume
	}
	if flags.Changed("identity") {
		cfg.IdentityPath = runIdentity
	}
	if flags.Changed("llm") {
		cfg.LLMProvider = runLLMProvider
	}
	if flags.Changed("search") {
		cfg.SearchProviders = runSearchBackends
	}
	if flags.Changed("feed") {
		cfg.FeedURLs = runFeeds
	}
	if flags.Changed("api-key") {
		cfg.APIKey = runAPIKey
		cfg.CohereAPIKey = runAPIKey
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if flags.Changed("docx") {
		cfg.ExportDocx = runExportDocx
	}
	if flags.Changed("skip-enrichment") {
		cfg.SkipEnrichment = runSkipEnrichment
	}
	if flags.Changed("language-gate") {
		cfg.LanguageGate = runLanguageGate
	}
	applyEnv(&cfg)

	// Step 3: Resolve presets and validate
	settings, err := config.Resolve(cfg)
	if err != nil {
		return err
	}

	// Step 4: Backends
	client, err := newLLMClient(ctx, settings.LLMProvider, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	cache, err := db.Open(settings.CachePath)
	if err != nil {
		log.Warn().Err(err).Str("path", settings.CachePath).Msg("cache unavailable, continuing without it")
		cache = nil
	} else {
		defer func() { _ = cache.Close() }()
	}

	deps := pipeline.Deps{LLM: client, Cache: cache, Out: cmd.OutOrStdout()}

	chain, err := search.Build(ctx, search.BuildOptions{
		Backends:     settings.SearchProviders,
		GoogleAPIKey: cfg.GoogleAPIKey,
		GoogleCX:     cfg.GoogleCX,
		FeedURLs:     settings.FeedURLs,
		LLM:          client,
		Cache:        cache,
	})
	if err != nil {
		deps.SearchErr = err
	} else {
		deps.Search = chain
	}

	fetcherCfg := fetch.DefaultCachedFetcherConfig()
	if settings.UseBrowser {
		fetcherCfg.Renderer = fetch.ChromeRenderer(fetch.DefaultBrowserTimeout)
	}
	deps.Fetcher = fetch.NewCachedFetcher(cache, fetcherCfg)

	if !settings.SkipEnrichment {
		deps.Looker = enrichment.NewNorthData(settings.Region.Country)
	}

	// Step 5: Run
	result, err := pipeline.RunPipeline(ctx, settings, deps)
	if result != nil && !settings.Verbose {
		printResult(cmd.OutOrStdout(), result)
	}
	return err
}

// newLLMClient builds the configured provider's client
func newLLMClient(ctx context.Context, provider string, cfg config.Config) (llm.Client, error) {
	llmCfg := llm.ConfigFor(provider)
	apiKey := cfg.APIKey
	envName := "GEMINI_API_KEY"
	if llmCfg.Provider == llm.ProviderCohere {
		apiKey = cfg.CohereAPIKey
		envName = "COHERE_API_KEY"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable or --api-key flag is required", envName)
	}
	return llm.NewClient(ctx, llmCfg, apiKey)
}

func printResult(w io.Writer, r *pipeline.RunResult) {
	_, _ = fmt.Fprintf(w, "Run %s: %s\n", r.RunID, r.Stats.StopReason)
	_, _ = fmt.Fprintf(w, "Considered %d, accepted %d, letters %d sent / %d failed\n",
		len(r.Considered), len(r.Accepted), r.Letters.Sent, r.Letters.Failed)
	for _, c := range r.Accepted {
		_, _ = fmt.Fprintf(w, "  %-40s %.2f  %s\n", c.Name, c.Score(), c.URL)
	}
	_, _ = fmt.Fprintf(w, "Snapshot: %s\nNotes:    %s\n", r.SnapshotPath, r.NotesPath)
}
