package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/search"
)

var searchCommand = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a single query against the configured search backends",
	Long: `Runs one query through the backend chain (cached) and prints the hits. Useful to check
credentials and rate limits before a full run. The web backend is not available here.`,
	Args: cobra.MinimumNArgs(1),
	RunE: searchCmd,
}

var (
	searchConfigPath string
	searchBackends   []string
	searchMax        int
	searchNoCache    bool
)

func init() {
	searchCommand.Flags().StringVar(&searchConfigPath, "config", "", "Path to config.json file")
	searchCommand.Flags().StringSliceVar(&searchBackends, "search", nil, "Search backends in order (google, duckduckgo, feeds)")
	searchCommand.Flags().IntVar(&searchMax, "max", 10, "Maximum results")
	searchCommand.Flags().BoolVar(&searchNoCache, "no-cache", false, "Bypass the search cache")

	rootCmd.AddCommand(searchCommand)
}

func searchCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(searchConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("search") {
		cfg.SearchProviders = searchBackends
	}
	applyEnv(&cfg)
	settings, err := config.Resolve(cfg)
	if err != nil {
		return err
	}

	opts := search.BuildOptions{
		Backends:     settings.SearchProviders,
		GoogleAPIKey: cfg.GoogleAPIKey,
		GoogleCX:     cfg.GoogleCX,
		FeedURLs:     settings.FeedURLs,
	}
	if !searchNoCache {
		cache, err := db.Open(settings.CachePath)
		if err != nil {
			logger.Named("cli").Warn().Err(err).Msg("cache unavailable")
		} else {
			defer func() { _ = cache.Close() }()
			opts.Cache = cache
		}
	}
	chain, err := search.Build(ctx, opts)
	if err != nil {
		return err
	}

	so := search.DefaultOptions()
	so.MaxResults = searchMax
	so.Region = settings.Region.SearchLocale
	return runSearch(ctx, cmd.OutOrStdout(), chain, strings.Join(args, " "), so)
}

func runSearch(ctx context.Context, w io.Writer, p search.Provider, query string, opts search.Options) error {
	results, err := p.Search(ctx, query, opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%d results for %q\n", len(results), query)
	for i, r := range results {
		_, _ = fmt.Fprintf(w, "%2d. %s\n    %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			_, _ = fmt.Fprintf(w, "    %s\n", r.Snippet)
		}
	}
	return nil
}
