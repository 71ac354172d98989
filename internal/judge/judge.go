package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/prompts"
	"github.com/jonathan/outreach-scout/internal/types"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

const promptFile = "outreach.json"

// Fallback reasons used when a response is malformed
const (
	EvaluationUnavailable   = "evaluation unavailable"
	CoordinationUnavailable = "coordination unavailable"
	ResolutionFallback      = "fallback"
)

// Options configures a Judge
type Options struct {
	Identity  string // organizer summary embedded in prompts
	Task      string
	Region    config.Region
	Threshold float64
}

// Judge talks to the judgment service
type Judge struct {
	client llm.Client
	opts   Options
	log    *logger.Logger
}

// New creates a Judge
func New(client llm.Client, opts Options) *Judge {
	return &Judge{client: client, opts: opts, log: logger.Named("judge")}
}

// EvaluationFallback is the conservative result for a malformed evaluation
func EvaluationFallback() types.EvaluationResult {
	return types.EvaluationResult{Score: 0, Accepted: false, Reason: EvaluationUnavailable}
}

// CoordinationFallback is the rejection used for a malformed coordination
func CoordinationFallback() types.CoordinatorDecision {
	return types.CoordinatorDecision{Approved: false, Reason: CoordinationUnavailable}
}

// Evaluate asks the service how well the candidate fits. Scores are clamped to [0,1].
func (j *Judge) Evaluate(ctx context.Context, c *types.Candidate) Parsed[types.EvaluationResult] {
	enrichment := c.Enrichment
	if enrichment == "" {
		enrichment = "keine"
	}
	parsed := call[types.EvaluationResult](ctx, j, "evaluate-candidate", llm.TierStandard, schemafiles.Evaluation, map[string]string{
		"Identity":   j.opts.Identity,
		"Region":     j.regionLabel(),
		"Candidate":  Describe(c),
		"Context":    contextText(c),
		"Enrichment": enrichment,
	})
	if eval, ok := parsed.Get(); ok {
		return Ok(eval.Clamp(), parsed.Raw())
	}
	return parsed
}

// Coordinate asks for a second opinion on an evaluation
func (j *Judge) Coordinate(ctx context.Context, c *types.Candidate, eval types.EvaluationResult) Parsed[types.CoordinatorDecision] {
	return call[types.CoordinatorDecision](ctx, j, "coordinate-candidate", llm.TierStandard, schemafiles.Coordination, map[string]string{
		"Identity":   j.opts.Identity,
		"Candidate":  Describe(c),
		"Threshold":  fmt.Sprintf("%.2f", j.opts.Threshold),
		"Evaluation": describeEvaluation(eval),
	})
}

func call[T any](ctx context.Context, j *Judge, key string, tier llm.ModelTier, schema string, data map[string]string) Parsed[T] {
	prompt, err := prompts.Render(promptFile, key, data)
	if err != nil {
		return Malformed[T]("", err)
	}
	raw, err := j.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		j.log.Warn().Err(err).Str("prompt", key).Msg("judgment call failed")
		return Malformed[T]("", fmt.Errorf("judgment call %s failed: %w", key, err))
	}
	parsed := Parse[T](raw, schema)
	if parsed.Err() != nil {
		j.log.Warn().Err(parsed.Err()).Str("prompt", key).Msg("malformed judgment response")
	}
	return parsed
}

func (j *Judge) regionLabel() string {
	if j.opts.Region.Label != "" {
		return j.opts.Region.Label
	}
	return j.opts.Region.Name
}

// Describe renders a candidate for prompts
func Describe(c *types.Candidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\nURL: %s\n", c.Name, c.URL)
	if c.Summary != "" {
		fmt.Fprintf(&sb, "Beschreibung: %s\n", c.Summary)
	}
	if c.SourceQuery != "" {
		fmt.Fprintf(&sb, "Suchanfrage: %s\n", c.SourceQuery)
	}
	if c.DiscoveredVia != "" {
		fmt.Fprintf(&sb, "Gefunden über: %s\n", c.DiscoveredVia)
	}
	if len(c.Notes) > 0 {
		fmt.Fprintf(&sb, "Notizen: %s\n", strings.Join(c.Notes, "; "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func contextText(c *types.Candidate) string {
	if c.Context == nil {
		return "nicht verfügbar"
	}
	return strings.TrimRight(c.Context.Text(), "\n")
}

func describeEvaluation(e types.EvaluationResult) string {
	return fmt.Sprintf("score=%.2f accepted=%t category=%s region=%s reason=%s hint=%s",
		e.Score, e.Accepted, e.Category, e.RegionHint, e.Reason, e.SearchAdjustment)
}
