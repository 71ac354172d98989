package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/outreach-scout/internal/blacklist"
	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/enrichment"
	"github.com/jonathan/outreach-scout/internal/filters"
	"github.com/jonathan/outreach-scout/internal/judge"
	"github.com/jonathan/outreach-scout/internal/letters"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/observability"
	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/registry"
	"github.com/jonathan/outreach-scout/internal/search"
	"github.com/jonathan/outreach-scout/internal/snapshot"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Stop reasons of the acquisition loop
const (
	StopTargetReached    = "target reached"
	StopMaxIterations    = "max iterations reached"
	StopQueriesExhausted = "queries exhausted"
	StopBackendFailure   = "search backend failure"
	StopCancelled        = "cancelled"
	StopNoSearch         = "no search configured"
	StopResumed          = "resumed from snapshot"
)

// Expander lists the entries of a directory page
type Expander interface {
	Expand(ctx context.Context, pageURL string) ([]types.DirectoryEntry, error)
}

// Enricher looks up an organization name in a company register
type Enricher interface {
	Enrich(ctx context.Context, name string) (enrichment.Result, error)
}

// Scheduler queues a letter for an accepted candidate
type Scheduler interface {
	Schedule(c *types.Candidate) bool
}

// AcquirerDeps are the collaborators of an Acquirer. Search, Judge, Registry and
// Blacklist are required; the rest are skipped when nil.
type AcquirerDeps struct {
	Search    search.Provider
	Judge     *judge.Judge
	Registry  *registry.Registry
	Blacklist *blacklist.Manager
	Expander  Expander
	Enricher  Enricher
	Context   letters.ContextProvider
	Letters   Scheduler
	Language  *filters.LanguageGate
	Printer   *observability.Printer
	OnEvent   ProgressCallback
}

// Outcome is how the acquisition loop ended
type Outcome struct {
	StopReason string
	SearchErr  error // the unrecoverable backend error, if that ended the loop
}

// Acquirer runs the candidate acquisition loop. It owns the run's shared state: seen URLs,
// expanded directories, the accepted and considered lists, the feedback pool and the
// slugs accepted this run. It is not safe for concurrent use.
type Acquirer struct {
	settings config.Settings
	deps     AcquirerDeps
	log      *logger.Logger

	seen          map[string]bool
	expanded      map[string]bool
	acceptedSlugs map[string]bool
	accepted      []*types.Candidate
	considered    []*types.Candidate
	feedback      *FeedbackPool

	usedQueries []string
	used        map[string]bool
	maxDepth    int
	stats       snapshot.Stats
}

// NewAcquirer creates an Acquirer for one run
func NewAcquirer(settings config.Settings, deps AcquirerDeps) *Acquirer {
	return &Acquirer{
		settings:      settings,
		deps:          deps,
		log:           logger.Named("pipeline"),
		seen:          make(map[string]bool),
		expanded:      make(map[string]bool),
		acceptedSlugs: make(map[string]bool),
		feedback:      NewFeedbackPool(FeedbackPoolSize),
		used:          make(map[string]bool),
	}
}

// Accepted returns the accepted candidates in acceptance order
func (a *Acquirer) Accepted() []*types.Candidate { return slices.Clone(a.accepted) }

// Considered returns every candidate that passed the URL and duplicate gates
func (a *Acquirer) Considered() []*types.Candidate { return slices.Clone(a.considered) }

// Feedback returns the current refinement hints
func (a *Acquirer) Feedback() []string { return a.feedback.Items() }

// Expanded returns how many directory pages were expanded
func (a *Acquirer) Expanded() int { return len(a.expanded) }

// MaxDepth returns the deepest candidate depth processed
func (a *Acquirer) MaxDepth() int { return a.maxDepth }

// UsedQueries returns the queries searched so far, in order
func (a *Acquirer) UsedQueries() []string { return slices.Clone(a.usedQueries) }

// Stats returns the loop counters
func (a *Acquirer) Stats() snapshot.Stats {
	s := a.stats
	s.Considered = len(a.considered)
	s.Accepted = len(a.accepted)
	return s
}

func (a *Acquirer) quotaReached() bool {
	return len(a.accepted) >= a.settings.TargetCount
}

func (a *Acquirer) emit(kind EventKind, c *types.Candidate, depth int, detail string) {
	ev := Event{Kind: kind, Depth: depth, Detail: detail}
	if c != nil {
		ev.URL = c.URL
		ev.Query = c.SourceQuery
	}
	a.log.Debug().
		Str("event", string(kind)).
		Str("url", ev.URL).
		Str("query", ev.Query).
		Int("depth", depth).
		Str("detail", detail).
		Msg("gate decision")
	if a.deps.OnEvent != nil {
		a.deps.OnEvent(ev)
	}
}

// Run executes the acquisition loop over the plan's queries until a stop condition holds
func (a *Acquirer) Run(ctx context.Context, plan types.Plan) Outcome {
	queries := slices.Collect(search.IterQueries(plan.Queries))
	var direct []string

	for iteration := 1; ; iteration++ {
		if a.quotaReached() {
			return a.stop(StopTargetReached, nil)
		}
		if iteration > a.settings.MaxIterations {
			return a.stop(StopMaxIterations, nil)
		}
		if ctx.Err() != nil {
			return a.stop(StopCancelled, nil)
		}
		a.stats.Iterations = iteration
		acceptedBefore := len(a.accepted)
		consideredBefore := len(a.considered)
		a.log.Info().Int("iteration", iteration).Int("queries", len(queries)).Int("direct_urls", len(direct)).Msg("starting iteration")

		for _, u := range direct {
			if a.quotaReached() {
				break
			}
			c := &types.Candidate{
				Name:         u,
				URL:          u,
				Source:       "refinement",
				SourceQuery:  "direct url",
				LetterStatus: types.LetterPending,
			}
			a.Process(ctx, c, 0)
		}
		direct = nil

		for _, q := range queries {
			if a.quotaReached() || ctx.Err() != nil {
				break
			}
			if a.used[strings.ToLower(q)] {
				continue
			}
			if err := a.searchQuery(ctx, q); err != nil {
				return a.stop(StopBackendFailure, err)
			}
		}
		queries = nil

		if a.quotaReached() {
			continue
		}
		if ctx.Err() != nil {
			return a.stop(StopCancelled, nil)
		}

		productive := len(a.accepted) > acceptedBefore
		produced := len(a.considered) > consideredBefore
		queries, direct = a.nextQueries(ctx, productive)
		if len(queries) == 0 && len(direct) == 0 {
			a.log.Info().Bool("produced_candidates", produced).Msg("no further queries")
			return a.stop(StopQueriesExhausted, nil)
		}
	}
}

func (a *Acquirer) stop(reason string, err error) Outcome {
	a.stats.StopReason = reason
	ev := a.log.Info().Str("reason", reason).Int("accepted", len(a.accepted)).Int("considered", len(a.considered))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("acquisition stopped")
	return Outcome{StopReason: reason, SearchErr: err}
}

// searchQuery runs one query. Only an unrecoverable backend error is returned; anything
// else counts as an empty search.
func (a *Acquirer) searchQuery(ctx context.Context, q string) error {
	a.used[strings.ToLower(q)] = true
	a.usedQueries = append(a.usedQueries, q)
	a.stats.Queries++

	opts := search.DefaultOptions()
	opts.MaxResults = a.settings.ResultsPerQuery
	if a.settings.Region.SearchLocale != "" {
		opts.Region = a.settings.Region.SearchLocale
	}

	results, err := a.deps.Search.Search(ctx, q, opts)
	if err != nil {
		a.emit(EventSearchFailed, &types.Candidate{SourceQuery: q}, 0, err.Error())
		if search.Unrecoverable(err) {
			return err
		}
		a.log.Warn().Err(err).Str("query", q).Msg("search failed, counting as empty")
		return nil
	}
	a.log.Debug().Str("query", q).Int("results", len(results)).Msg("search results")

	for _, r := range results {
		if a.quotaReached() {
			break
		}
		if r.Query == "" {
			r.Query = q
		}
		a.Process(ctx, types.NewCandidateFromResult(r), 0)
	}
	return nil
}

// nextQueries picks the next iteration's work. After an unproductive iteration the
// refinement call goes first; after a productive one the unused fallback pool does.
func (a *Acquirer) nextQueries(ctx context.Context, productive bool) ([]string, []string) {
	if productive {
		if fb := a.unusedFallback(); len(fb) > 0 {
			return fb, nil
		}
	}
	if res := a.refine(ctx); !res.Empty() {
		return res.Queries, res.DirectURLs
	}
	return a.unusedFallback(), nil
}

func (a *Acquirer) refine(ctx context.Context) judge.RefineResult {
	parsed := a.deps.Judge.Refine(ctx, judge.RefineRequest{
		Remaining:   a.settings.TargetCount - len(a.accepted),
		UsedQueries: a.usedQueries,
		Feedback:    a.feedback.Items(),
		Accepted:    a.accepted,
	})
	res, ok := parsed.Get()
	if !ok {
		a.log.Warn().Err(parsed.Err()).Msg("malformed refinement, using fallback queries")
		return judge.RefineResult{}
	}
	if !res.Empty() {
		a.stats.Refinements++
		a.emit(EventRefined, nil, 0, fmt.Sprintf("%d queries, %d direct urls", len(res.Queries), len(res.DirectURLs)))
	}
	return res
}

func (a *Acquirer) unusedFallback() []string {
	var out []string
	for q := range search.IterQueries(a.settings.Region.FallbackQueries) {
		if !a.used[strings.ToLower(q)] {
			out = append(out, q)
		}
	}
	return out
}

// Process runs one candidate through the gates and, if it survives them, the judgment
// calls. Directory pages recurse into their entries at depth+1. Returns whether the
// candidate was accepted.
func (a *Acquirer) Process(ctx context.Context, c *types.Candidate, depth int) bool {
	gates := a.settings.Gates
	c.Depth = depth
	a.maxDepth = max(a.maxDepth, depth)

	if c.URL == "" || filters.ShouldSkipURL(c.URL, gates) {
		a.emit(EventSkippedURL, c, depth, "")
		return false
	}
	key := c.Key()
	if a.seen[key] {
		a.emit(EventDuplicate, c, depth, "")
		return false
	}
	a.seen[key] = true
	a.considered = append(a.considered, c)

	if entry, ok := a.deps.Blacklist.IsBlacklisted(c.URL); ok {
		c.AddNote("blacklisted: " + entry.Reason)
		a.emit(EventBlacklisted, c, depth, entry.Reason)
		return false
	}
	if term, ok := filters.MatchNegativeTerm(c, gates); ok {
		c.AddNote("negative term: " + term)
		a.emit(EventNegativeTerm, c, depth, term)
		return false
	}
	if ok, kw := filters.CandidateMatchesRegion(c, a.settings.Region); !ok {
		c.AddNote("off-region: " + kw)
		a.emit(EventRegionFiltered, c, depth, kw)
		return false
	}
	if signals := filters.PositiveSignals(c, a.settings.Region); len(signals) > 0 {
		c.AddNote("region signals: " + strings.Join(signals, ", "))
	}
	if a.deps.Language != nil {
		if ok, lang := a.deps.Language.Allow(c.Snippet); !ok {
			c.AddNote("language: " + lang)
			a.emit(EventLanguageFiltered, c, depth, lang)
			return false
		}
	}

	if filters.LooksLikeDirectoryCandidate(c, gates) {
		a.processDirectory(ctx, c, depth)
		return false
	}

	slug, known := a.resolve(ctx, c)
	c.OrgSlug = slug
	a.markSeen(c)
	if known {
		a.emit(EventKnownOrg, c, depth, slug)
		return false
	}

	a.enrich(ctx, c)
	eval, coord := a.assess(ctx, c, depth)

	if coord.Blacklist {
		reason := coord.BlacklistReason
		if reason == "" {
			reason = coord.Reason
		}
		if _, err := a.deps.Blacklist.Add(c.URL, reason, blacklist.AddOptions{
			Tag:    blacklist.TagCoordinator,
			Source: "coordinator",
			Meta:   map[string]string{"org_slug": slug},
		}); err != nil {
			a.log.Warn().Err(err).Str("url", c.URL).Msg("failed to blacklist candidate")
		} else {
			a.emit(EventCoordinatorBlacklist, c, depth, reason)
		}
	}

	accepted := ShouldAccept(AcceptInput{
		Evaluation:   eval,
		Coordination: &coord,
		Threshold:    a.settings.AcceptThreshold,
		QuotaReached: a.quotaReached(),
	})
	if !accepted {
		a.feedback.Add(eval.SearchAdjustment)
		a.feedback.Add(coord.KeywordHints...)
		a.deps.Registry.Upsert(slug, registry.UpsertOptions{
			Name:   c.Name,
			Domain: orgid.DomainKey(c.URL),
			URL:    c.URL,
			Status: registry.StatusRejected,
			Notes:  eval.Reason,
		})
		a.emit(EventRejected, c, depth, fmt.Sprintf("score=%.2f", eval.Score))
		return false
	}

	a.accept(c, slug, eval.Reason)
	a.emit(EventAccepted, c, depth, fmt.Sprintf("score=%.2f", eval.Score))
	return true
}

func (a *Acquirer) processDirectory(ctx context.Context, c *types.Candidate, depth int) {
	c.Directory = true
	c.OrgSlug = orgid.DefaultOrgSlug(c.Name, c.URL)
	c.Evaluation = &types.EvaluationResult{Score: DirectoryScore, Reason: "directory page"}
	a.markSeen(c)

	key := c.Key()
	if depth >= DirectoryMaxDepth || a.expanded[key] || a.deps.Expander == nil {
		c.AddNote("directory not expanded")
		return
	}
	a.expanded[key] = true

	entries, err := a.deps.Expander.Expand(ctx, c.URL)
	if err != nil {
		c.AddNote("directory expansion failed: " + err.Error())
		a.log.Warn().Err(err).Str("url", c.URL).Msg("directory expansion failed")
		return
	}
	c.AddNote(fmt.Sprintf("directory with %d entries", len(entries)))
	a.emit(EventDirectoryExpanded, c, depth, fmt.Sprintf("%d entries", len(entries)))

	for _, e := range entries {
		if a.quotaReached() || ctx.Err() != nil {
			return
		}
		a.Process(ctx, types.NewCandidateFromEntry(e, c), depth+1)
	}
}

// markSeen records the first encounter of the candidate's slug. Existing records keep their status.
func (a *Acquirer) markSeen(c *types.Candidate) {
	if _, ok := a.deps.Registry.Get(c.OrgSlug); ok {
		return
	}
	a.deps.Registry.Upsert(c.OrgSlug, registry.UpsertOptions{
		Name:   c.Name,
		Domain: orgid.DomainKey(c.URL),
		URL:    c.URL,
		Status: registry.StatusSeen,
	})
}

// resolve picks the organization slug and reports whether the organization was already
// accepted this run or accepted/contacted in an earlier one
func (a *Acquirer) resolve(ctx context.Context, c *types.Candidate) (string, bool) {
	slug := orgid.DefaultOrgSlug(c.Name, c.URL)

	recent := a.deps.Registry.RecentRecords(judge.DefaultRecentRecords)
	parsed := a.deps.Judge.Resolve(ctx, c, slug, recent)
	res, ok := parsed.Get()
	if !ok {
		res = judge.ResolveFallback(slug)
		a.log.Debug().Err(parsed.Err()).Str("url", c.URL).Msg("slug resolution fell back")
	}
	if res.Note != "" {
		c.AddNote("slug: " + res.Note)
	}

	if a.acceptedSlugs[res.Slug] || a.deps.Registry.IsTerminal(res.Slug) {
		return res.Slug, true
	}
	return res.Slug, false
}

func (a *Acquirer) enrich(ctx context.Context, c *types.Candidate) {
	if a.deps.Enricher != nil && !a.settings.SkipEnrichment {
		res, err := a.deps.Enricher.Enrich(ctx, c.Name)
		if err != nil {
			c.AddNote("lookup failed: " + err.Error())
		} else {
			c.Enrichment = res.Summary
			if res.StoreErr != nil {
				c.AddNote("cannot write enrichment file: " + res.StoreErr.Error())
			}
		}
	}
	if a.deps.Context != nil && c.Context == nil {
		snap, err := a.deps.Context.Context(ctx, c.URL)
		if err != nil {
			c.AddNote("no web context: " + err.Error())
		} else {
			c.Context = snap
		}
	}
}

// assess runs evaluation then coordination, substituting the conservative fallbacks for
// malformed answers
func (a *Acquirer) assess(ctx context.Context, c *types.Candidate, depth int) (types.EvaluationResult, types.CoordinatorDecision) {
	parsedEval := a.deps.Judge.Evaluate(ctx, c)
	eval, ok := parsedEval.Get()
	if !ok {
		eval = judge.EvaluationFallback()
		c.AddNote("evaluation malformed")
		a.log.Warn().Err(parsedEval.Err()).Str("url", c.URL).Msg("malformed evaluation")
	}
	c.Evaluation = &eval
	a.emit(EventEvaluated, c, depth, fmt.Sprintf("score=%.2f accepted=%t", eval.Score, eval.Accepted))

	parsedCoord := a.deps.Judge.Coordinate(ctx, c, eval)
	coord, ok := parsedCoord.Get()
	if !ok {
		coord = judge.CoordinationFallback()
		c.AddNote("coordination malformed")
		a.log.Warn().Err(parsedCoord.Err()).Str("url", c.URL).Msg("malformed coordination")
	}
	c.Coordination = &coord
	return eval, coord
}

func (a *Acquirer) accept(c *types.Candidate, slug, reason string) {
	a.acceptedSlugs[slug] = true
	a.accepted = append(a.accepted, c)
	a.deps.Registry.Upsert(slug, registry.UpsertOptions{
		Name:   c.Name,
		Domain: orgid.DomainKey(c.URL),
		URL:    c.URL,
		Status: registry.StatusAccepted,
		Notes:  reason,
	})
	a.log.Info().Str("candidate", c.Name).Str("url", c.URL).Str("slug", slug).Float64("score", c.Score()).Msg("candidate accepted")

	if a.deps.Printer != nil {
		a.deps.Printer.PrintCandidate(c)
	}
	if a.deps.Letters != nil && !a.deps.Letters.Schedule(c) {
		a.log.Debug().Str("candidate", c.Name).Msg("letter cap reached, not scheduled")
	}
}

// Resume re-registers the accepted candidates of a snapshot and queues letters for
// those not yet contacted. No search happens. Returns how many were re-queued.
func (a *Acquirer) Resume(snap *snapshot.Snapshot) int {
	for i := range snap.AllCandidates {
		c := &snap.AllCandidates[i]
		if key := c.Key(); !a.seen[key] {
			a.seen[key] = true
			a.considered = append(a.considered, c)
		}
	}

	requeued := 0
	for i := range snap.Accepted {
		c := &snap.Accepted[i]
		slug := c.OrgSlug
		if slug == "" {
			slug = orgid.DefaultOrgSlug(c.Name, c.URL)
		}
		c.OrgSlug = slug
		if key := c.Key(); !a.seen[key] {
			a.seen[key] = true
			a.considered = append(a.considered, c)
		}

		if rec, ok := a.deps.Registry.Get(slug); ok && rec.Status == registry.StatusContacted {
			a.emit(EventKnownOrg, c, c.Depth, "already contacted")
			continue
		}
		if entry, ok := a.deps.Blacklist.IsBlacklisted(c.URL); ok && entry.Tag == blacklist.TagContacted {
			a.emit(EventBlacklisted, c, c.Depth, entry.Reason)
			continue
		}

		c.LetterStatus = types.LetterPending
		c.LetterPath = ""
		a.accept(c, slug, "resumed")
		requeued++
	}
	a.stats.StopReason = StopResumed
	return requeued
}
