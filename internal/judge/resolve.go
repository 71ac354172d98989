package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/registry"
	"github.com/jonathan/outreach-scout/internal/types"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// DefaultRecentRecords is how many registry records the resolver is shown
const DefaultRecentRecords = 25

// Resolution is the organization identity chosen for a candidate
type Resolution struct {
	UseExisting bool
	Slug        string
	Note        string
}

type resolutionResponse struct {
	Decision string `json:"decision"`
	Slug     string `json:"slug"`
	Note     string `json:"note"`
}

// ResolveFallback keeps the deterministic slug
func ResolveFallback(slug string) Resolution {
	return Resolution{Slug: slug, Note: ResolutionFallback}
}

// Resolve asks whether the candidate belongs to one of the recent records.
// Without records there is nothing to match and the service is not called.
func (j *Judge) Resolve(ctx context.Context, c *types.Candidate, slug string, recent []registry.OrganizationRecord) Parsed[Resolution] {
	if len(recent) == 0 {
		return Ok(Resolution{Slug: slug, Note: "no known organizations"}, "")
	}

	lines := make([]string, 0, len(recent))
	for _, rec := range recent {
		lines = append(lines, fmt.Sprintf("%s | %s | %s | %s", rec.Slug, rec.Name, rec.Domain, rec.Status))
	}
	parsed := call[resolutionResponse](ctx, j, "resolve-organization", llm.TierLite, schemafiles.Resolution, map[string]string{
		"Candidate": Describe(c),
		"Slug":      slug,
		"Records":   strings.Join(lines, "\n"),
	})

	resp, ok := parsed.Get()
	if !ok {
		return Malformed[Resolution](parsed.Raw(), parsed.Err())
	}
	res := Resolution{
		UseExisting: resp.Decision == "use_existing",
		Slug:        orgid.Slugify(resp.Slug),
		Note:        strings.TrimSpace(resp.Note),
	}
	if res.Slug == "" {
		res.Slug = slug
	}
	if res.UseExisting && !knownSlug(recent, res.Slug) {
		// an existing slug that does not exist is treated as a new organization
		res.UseExisting = false
		res.Slug = slug
	}
	return Ok(res, parsed.Raw())
}

func knownSlug(records []registry.OrganizationRecord, slug string) bool {
	for _, rec := range records {
		if rec.Slug == slug {
			return true
		}
	}
	return false
}
