package judge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/types"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// RefineRequest is the state the refinement call sees
type RefineRequest struct {
	Remaining   int
	UsedQueries []string
	Feedback    []string
	Accepted    []*types.Candidate
}

// RefineResult holds new queries and direct URL hints
type RefineResult struct {
	Queries    []string `json:"queries"`
	DirectURLs []string `json:"direct_urls"`
}

// Empty reports whether the refinement produced nothing usable
func (r RefineResult) Empty() bool {
	return len(r.Queries) == 0 && len(r.DirectURLs) == 0
}

// maxAcceptedDigest bounds the accepted candidates shown for inspiration
const maxAcceptedDigest = 5

// Refine asks for new search queries. Already used queries and non-http URLs are dropped.
func (j *Judge) Refine(ctx context.Context, req RefineRequest) Parsed[RefineResult] {
	parsed := call[RefineResult](ctx, j, "refine-queries", llm.TierAdvanced, schemafiles.Refinement, map[string]string{
		"Task":        j.opts.Task,
		"Region":      j.regionLabel(),
		"Identity":    j.opts.Identity,
		"Remaining":   strconv.Itoa(req.Remaining),
		"UsedQueries": bulletList(req.UsedQueries, "keine"),
		"Feedback":    bulletList(req.Feedback, "keine"),
		"Accepted":    acceptedDigest(req.Accepted),
	})
	res, ok := parsed.Get()
	if !ok {
		return parsed
	}

	used := make(map[string]bool, len(req.UsedQueries))
	for _, q := range req.UsedQueries {
		used[strings.ToLower(strings.TrimSpace(q))] = true
	}
	var queries []string
	for _, q := range res.Queries {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" || used[key] {
			continue
		}
		used[key] = true
		queries = append(queries, q)
	}
	var urls []string
	for _, u := range res.DirectURLs {
		u = strings.TrimSpace(u)
		if parsedURL, err := url.Parse(u); err == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") && parsedURL.Host != "" {
			urls = append(urls, u)
		}
	}
	return Ok(RefineResult{Queries: queries, DirectURLs: urls}, parsed.Raw())
}

type planResponse struct {
	Steps       []string `json:"steps"`
	Queries     []string `json:"queries"`
	TargetCount int      `json:"target_count"`
}

// PlanFallback is the region's query set as a plan
func (j *Judge) PlanFallback(target int) types.Plan {
	return types.NewPlan(defaultSteps, j.opts.Region.Queries, target)
}

var defaultSteps = []string{
	"Regionale Suchanfragen ausführen",
	"Kandidaten bewerten und abstimmen",
	"Einladungen für angenommene Kandidaten schreiben",
}

// Plan asks for a search strategy. The requested target always wins over the one returned,
// and the region's queries are appended after the suggested ones.
func (j *Judge) Plan(ctx context.Context, target int) Parsed[types.Plan] {
	parsed := call[planResponse](ctx, j, "plan-search", llm.TierAdvanced, schemafiles.Plan, map[string]string{
		"Task":    j.opts.Task,
		"Region":  j.regionLabel(),
		"Target":  strconv.Itoa(target),
		"Queries": bulletList(j.opts.Region.Queries, "keine"),
	})
	resp, ok := parsed.Get()
	if !ok {
		return Malformed[types.Plan](parsed.Raw(), parsed.Err())
	}
	steps := resp.Steps
	if len(steps) == 0 {
		steps = defaultSteps
	}
	queries := append(append([]string{}, resp.Queries...), j.opts.Region.Queries...)
	return Ok(types.NewPlan(steps, queries, target), parsed.Raw())
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func acceptedDigest(accepted []*types.Candidate) string {
	if len(accepted) == 0 {
		return "keine"
	}
	start := max(0, len(accepted)-maxAcceptedDigest)
	lines := make([]string, 0, len(accepted)-start)
	for _, c := range accepted[start:] {
		lines = append(lines, fmt.Sprintf("- %s (%s)", c.Name, c.URL))
	}
	return strings.Join(lines, "\n")
}
