package fetch

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Snapshot extraction limits
const (
	SummaryMinChars  = 60
	SummaryMaxChars  = 480
	HighlightMinChar = 20
	HighlightMaxChar = 200
	HighlightLimit   = 5
	MaxRelatedPages  = 4
)

// RelatedPathHints are the paths tried for contact and about pages
var RelatedPathHints = []string{
	"kontakt", "contact", "kontaktformular", "impressum", "about",
	"ueber-uns", "über-uns", "team", "mitmachen",
}

var (
	capitalizedWord = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])([A-ZÄÖÜ][a-zäöüß]+)(?:[^\p{L}\p{N}_]|$)`)
	titleCaser      = cases.Title(language.German)
)

// BuildSnapshot summarizes a page: title, a summary paragraph, list highlights
// and the first location cue found in them.
func BuildSnapshot(pageURL, html string, cues []string, fetchedAt time.Time) (*types.SiteSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := normalizeSpace(doc.Find("title").First().Text())
	if title == "" {
		title = pageURL
	}

	summary := articleSummary(pageURL, html)
	if summary == "" {
		summary = extractSummary(doc)
	}
	highlights := extractHighlights(doc)

	return &types.SiteSnapshot{
		URL:              pageURL,
		Title:            title,
		Summary:          summary,
		Highlights:       highlights,
		DetectedLocation: DetectLocation(summary+" "+strings.Join(highlights, " "), cues),
		FetchedAt:        fetchedAt,
	}, nil
}

// articleSummary looks for an in-range paragraph in the readability article body
func articleSummary(pageURL, html string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil || article.Content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	var summary string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeSpace(s.Text())
		if inRange(text, SummaryMinChars, SummaryMaxChars) {
			summary = text
			return false
		}
		return true
	})
	return summary
}

// extractSummary takes the first paragraph of 60–480 chars, else the first paragraph
// truncated, else the body text truncated
func extractSummary(doc *goquery.Document) string {
	paragraphs := doc.Find("p")
	var summary string
	paragraphs.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeSpace(s.Text())
		if inRange(text, SummaryMinChars, SummaryMaxChars) {
			summary = text
			return false
		}
		return true
	})
	if summary != "" {
		return summary
	}
	if paragraphs.Length() > 0 {
		return truncateRunes(normalizeSpace(paragraphs.First().Text()), SummaryMaxChars)
	}
	body := doc.Find("body")
	body.Find("script, style, noscript").Remove()
	return truncateRunes(normalizeSpace(body.Text()), SummaryMaxChars)
}

func extractHighlights(doc *goquery.Document) []string {
	var highlights []string
	doc.Find("li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeSpace(s.Text())
		if inRange(text, HighlightMinChar, HighlightMaxChar) && !slices.Contains(highlights, text) {
			highlights = append(highlights, text)
		}
		return len(highlights) < HighlightLimit
	})
	return highlights
}

// DetectLocation returns the first cue found in text (title-cased), else the first
// capitalized word, else ""
func DetectLocation(text string, cues []string) string {
	lowered := strings.ToLower(text)
	for _, cue := range cues {
		if strings.Contains(lowered, cue) {
			return titleCaser.String(cue)
		}
	}
	if m := capitalizedWord.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// RelatedURLs builds up to MaxRelatedPages contact and about page URLs on the same host
func RelatedURLs(pageURL string) []string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return nil
	}
	base := parsed.Scheme + "://" + parsed.Host
	self := strings.ToLower(strings.TrimSuffix(pageURL, "/"))

	var related []string
	for _, hint := range RelatedPathHints {
		candidate := strings.TrimSuffix(base+"/"+strings.Trim(hint, "/"), "/")
		if strings.ToLower(candidate) == self || slices.Contains(related, candidate) {
			continue
		}
		related = append(related, candidate)
		if len(related) >= MaxRelatedPages {
			break
		}
	}
	return related
}

// Contexter produces site snapshots for candidates, reading and filling the snapshot cache.
type Contexter struct {
	fetcher Fetcher
	cache   *db.DB
	cues    []string
	now     func() time.Time
	log     *logger.Logger
}

// NewContexter creates a Contexter. A nil cache disables snapshot caching.
func NewContexter(fetcher Fetcher, cache *db.DB, cues []string) *Contexter {
	return &Contexter{
		fetcher: fetcher,
		cache:   cache,
		cues:    cues,
		now:     time.Now,
		log:     logger.Named("context"),
	}
}

// Context returns the cached snapshot for pageURL, or fetches, builds and stores one
func (c *Contexter) Context(ctx context.Context, pageURL string) (*types.SiteSnapshot, error) {
	if c.cache != nil {
		snap, err := c.cache.GetSnapshot(ctx, pageURL)
		if err != nil {
			c.log.Warn().Err(err).Str("url", pageURL).Msg("snapshot cache read failed")
		} else if snap != nil {
			return snap, nil
		}
	}

	result, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	snap, err := BuildSnapshot(pageURL, result.HTML, c.cues, c.now().UTC())
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to build snapshot", Cause: err}
	}

	if c.cache != nil {
		if err := c.cache.SaveSnapshot(ctx, snap); err != nil {
			c.log.Warn().Err(err).Str("url", pageURL).Msg("snapshot cache write failed")
		}
	}
	return snap, nil
}

// Related returns snapshots of the contact and about pages that could be fetched
func (c *Contexter) Related(ctx context.Context, pageURL string, limit int) []*types.SiteSnapshot {
	urls := RelatedURLs(pageURL)
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	var snaps []*types.SiteSnapshot
	for _, u := range urls {
		snap, err := c.Context(ctx, u)
		if err != nil {
			c.log.Debug().Err(err).Str("url", u).Msg("related page unavailable")
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

func inRange(text string, minChars, maxChars int) bool {
	n := utf8.RuneCountInString(text)
	return n >= minChars && n <= maxChars
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
