// Package pipeline provides the high-level orchestration of an outreach run: planning,
// candidate acquisition, letter dispatch and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonathan/outreach-scout/internal/blacklist"
	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/directory"
	"github.com/jonathan/outreach-scout/internal/enrichment"
	"github.com/jonathan/outreach-scout/internal/fetch"
	"github.com/jonathan/outreach-scout/internal/filters"
	"github.com/jonathan/outreach-scout/internal/judge"
	"github.com/jonathan/outreach-scout/internal/letters"
	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/observability"
	"github.com/jonathan/outreach-scout/internal/registry"
	"github.com/jonathan/outreach-scout/internal/search"
	"github.com/jonathan/outreach-scout/internal/snapshot"
	"github.com/jonathan/outreach-scout/internal/types"
)

// NoCandidatesError is returned when a run ends without a single accepted candidate
type NoCandidatesError struct {
	StopReason string
	NoSearch   bool
	Cause      error
}

func (e *NoCandidatesError) Error() string {
	msg := fmt.Sprintf("no candidates accepted (%s): %s", e.StopReason, e.Hint())
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *NoCandidatesError) Unwrap() error {
	return e.Cause
}

// Hint tells a misconfigured setup apart from an exhausted or failing backend
func (e *NoCandidatesError) Hint() string {
	if e.NoSearch || errors.Is(e.Cause, search.ErrNotConfigured) {
		return "no search backend is configured; set GOOGLE_API_KEY and GOOGLE_CX or enable duckduckgo, feeds or web search"
	}
	if errors.Is(e.Cause, search.ErrRateLimited) {
		return "the search backend is rate limiting; wait and rerun, cached results will be reused"
	}
	return "the search backend returned nothing usable; widen the region, lower the phase or check the blacklist"
}

// Deps are the external collaborators of a run. LLM is required; a nil Search means no
// search capability (only resume works); Cache, Fetcher and Looker are optional.
type Deps struct {
	LLM        llm.Client
	Search     search.Provider
	SearchErr  error // why Search could not be built, reported in the fatal hint
	Cache      *db.DB
	Fetcher    fetch.Fetcher
	Looker     enrichment.Looker
	Out        io.Writer // verbose output, defaults to stdout
	OnProgress ProgressCallback
}

// RunResult is what a finished run produced
type RunResult struct {
	RunID        string
	Plan         types.Plan
	Accepted     []*types.Candidate
	Considered   []*types.Candidate
	Stats        snapshot.Stats
	Letters      letters.Summary
	SnapshotPath string
	NotesPath    string
}

// RunPipeline runs one outreach pass: plan, acquire (or resume from a snapshot), wait for
// the letters, then write the snapshot, notes, registry and blacklist. Partial results are
// always persisted; an error is returned only for setup failures or when nothing was accepted.
func RunPipeline(ctx context.Context, s config.Settings, deps Deps) (*RunResult, error) {
	log := logger.Named("pipeline")
	if deps.LLM == nil {
		return nil, fmt.Errorf("pipeline requires an LLM client")
	}

	identity, err := config.LoadIdentity(s.IdentityPath)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(s.RegistryPath)
	if err != nil {
		return nil, err
	}
	bl, err := blacklist.Load(s.BlacklistPath)
	if err != nil {
		return nil, err
	}

	var printer *observability.Printer
	if s.Verbose {
		out := deps.Out
		if out == nil {
			out = os.Stdout
		}
		printer = observability.NewPrinter(out)
	}

	runID := snapshot.NewRunID()
	log.Info().Str("run_id", runID).Str("phase", s.Phase.Name).Str("region", s.Region.Name).
		Int("target", s.TargetCount).Int("registry", reg.Len()).Int("blacklist", bl.Len()).Msg("starting run")

	j := judge.New(deps.LLM, judge.Options{
		Identity:  identity.Summary(),
		Task:      s.Task,
		Region:    s.Region,
		Threshold: s.AcceptThreshold,
	})

	acqDeps := AcquirerDeps{
		Search:    deps.Search,
		Judge:     j,
		Registry:  reg,
		Blacklist: bl,
		Printer:   printer,
		OnEvent:   deps.OnProgress,
	}
	var contexter letters.ContextProvider
	if deps.Fetcher != nil {
		c := fetch.NewContexter(deps.Fetcher, deps.Cache, s.Region.LocationCues)
		contexter = c
		acqDeps.Context = c
		acqDeps.Expander = directory.NewExpander(deps.Fetcher, deps.Cache, directory.DefaultOptions(s.Gates.DirectoryEntryKeywords))
	}
	if deps.Looker != nil && !s.SkipEnrichment {
		acqDeps.Enricher = enrichment.NewEnricher(deps.Looker, s.EnrichmentDir)
	}
	if s.LanguageGate {
		acqDeps.Language = filters.NewLanguageGate(s.Gates.AllowedLanguages, s.Gates.MinLanguageChars)
	}

	writer := letters.NewWriter(deps.LLM, letters.WriterOptions{
		Identity:   identity.Summary(),
		MaxWords:   s.LetterMaxWords,
		MaxRetries: s.LetterMaxRetries,
	})
	dispatcher := letters.NewDispatcher(ctx, writer, letters.NewStore(s.LettersDir, runID, s.ExportDocx), letters.DispatcherOptions{
		Limit:       s.LettersPerRun,
		Concurrency: s.LetterConcurrency,
		Registry:    reg,
		Blacklist:   bl,
		Context:     contexter,
	})
	acqDeps.Letters = dispatcher

	acq := NewAcquirer(s, acqDeps)
	result := &RunResult{RunID: runID, SnapshotPath: s.SnapshotPath, NotesPath: s.NotesPath}
	var outcome Outcome

	switch {
	case s.ResumeFrom != "":
		snap, err := snapshot.Load(s.ResumeFrom)
		if err != nil {
			dispatcher.Finalize()
			return nil, err
		}
		n := acq.Resume(snap)
		outcome = Outcome{StopReason: StopResumed}
		log.Info().Str("snapshot", s.ResumeFrom).Int("requeued", n).Msg("resumed from snapshot")

	case deps.Search == nil:
		outcome = Outcome{StopReason: StopNoSearch, SearchErr: deps.SearchErr}
		log.Error().Err(deps.SearchErr).Msg("no search backend available")

	default:
		result.Plan = plan(ctx, j, s.TargetCount)
		if printer != nil {
			printer.PrintPlan(&result.Plan)
		}
		outcome = acq.Run(ctx, result.Plan)
	}

	result.Letters = dispatcher.Finalize()
	result.Accepted = acq.Accepted()
	result.Considered = acq.Considered()
	result.Stats = acq.Stats()
	result.Stats.StopReason = outcome.StopReason
	result.Stats.LettersSent = result.Letters.Sent
	result.Stats.LettersFailed = result.Letters.Failed

	persist(s, result, reg, bl)

	if printer != nil {
		printer.PrintRunSummary(observability.RunSummary{
			RunID:         runID,
			StopReason:    outcome.StopReason,
			Iterations:    result.Stats.Iterations,
			Considered:    len(result.Considered),
			Accepted:      result.Accepted,
			LettersSent:   result.Letters.Sent,
			LettersFailed: result.Letters.Failed,
			SnapshotPath:  s.SnapshotPath,
			NotesPath:     s.NotesPath,
		})
	}

	if len(result.Accepted) == 0 && outcome.StopReason != StopResumed {
		return result, &NoCandidatesError{
			StopReason: outcome.StopReason,
			NoSearch:   deps.Search == nil,
			Cause:      outcome.SearchErr,
		}
	}
	return result, nil
}

func plan(ctx context.Context, j *judge.Judge, target int) types.Plan {
	parsed := j.Plan(ctx, target)
	if p, ok := parsed.Get(); ok {
		return p
	}
	logger.Named("pipeline").Warn().Err(parsed.Err()).Msg("malformed plan, using region queries")
	return j.PlanFallback(target)
}

// persist writes every run artifact. Failures are logged; the run result stands.
func persist(s config.Settings, r *RunResult, reg *registry.Registry, bl *blacklist.Manager) {
	log := logger.Named("pipeline")
	now := time.Now()

	if err := snapshot.Write(s.SnapshotPath, snapshot.New(r.RunID, r.Accepted, r.Considered, now)); err != nil {
		log.Error().Err(err).Msg("failed to write snapshot")
	}
	notes := snapshot.Notes{
		RunID:      r.RunID,
		Plan:       r.Plan,
		Accepted:   r.Accepted,
		Considered: r.Considered,
		Stats:      r.Stats,
		Generated:  now,
	}
	if err := snapshot.WriteNotes(s.NotesPath, notes); err != nil {
		log.Error().Err(err).Msg("failed to write research notes")
	}
	if path, err := reg.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save registry")
	} else if path != "" {
		log.Info().Str("path", path).Int("records", reg.Len()).Msg("registry saved")
	}
	if _, err := bl.Persist(); err != nil {
		log.Error().Err(err).Msg("failed to persist blacklist")
	}
}
