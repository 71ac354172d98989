package directory

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Defaults for directory parsing
const (
	DefaultMaxEntries = 25
	DefaultMinLinks   = 3
	minAnchorChars    = 3
)

// descriptionTrim are the characters stripped around a derived description
const descriptionTrim = " :-–|"

// Options controls which anchors count as entries
type Options struct {
	Keywords   []string // anchor text must contain one of these (lowercase)
	MaxEntries int
	MinLinks   int // fewer matches than this means the page is not a directory
}

// DefaultOptions returns the standard limits for the given entry keywords
func DefaultOptions(keywords []string) Options {
	return Options{
		Keywords:   keywords,
		MaxEntries: DefaultMaxEntries,
		MinLinks:   DefaultMinLinks,
	}
}

// ParseEntries extracts organization links from a directory page.
// Returns no entries when fewer than MinLinks anchors qualify.
func ParseEntries(htmlContent, pageURL string, opts Options) ([]types.DirectoryEntry, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &ParseError{URL: pageURL, Message: "failed to parse page URL", Cause: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &ParseError{URL: pageURL, Message: fmt.Sprintf("invalid page URL %q (must have scheme and host)", pageURL)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}

	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}

	seen := make(map[string]bool)
	entries := make([]types.DirectoryEntry, 0)

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(entries) >= opts.MaxEntries {
			return false
		}

		text := normalize(s.Text())
		if utf8.RuneCountInString(text) < minAnchorChars || !matchesKeyword(text, opts.Keywords) {
			return true
		}

		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		linkURL, err := url.Parse(href)
		if err != nil {
			return true
		}
		target := base.ResolveReference(linkURL)
		if !strings.HasPrefix(target.Scheme, "http") {
			return true
		}
		// Links back to the directory's own front page are navigation
		if target.Host == base.Host && (target.Path == "/" || target.Path == "") {
			return true
		}

		resolved := strings.TrimRight(target.String(), "/")
		if seen[resolved] {
			return true
		}
		seen[resolved] = true

		entries = append(entries, types.DirectoryEntry{
			Name:        text,
			URL:         resolved,
			Description: describe(s, text, pageURL),
			SourceURL:   pageURL,
		})
		return true
	})

	if len(entries) < opts.MinLinks {
		return nil, nil
	}
	return entries, nil
}

// describe derives an entry description from the anchor's parent text
func describe(anchor *goquery.Selection, text, pageURL string) string {
	parentText := text
	if parent := anchor.Parent(); parent.Length() > 0 {
		parentText = parent.Text()
	}
	description := strings.ReplaceAll(normalize(parentText), text, "")
	description = strings.Trim(description, descriptionTrim)
	if description == "" {
		return "Gefunden über " + pageURL
	}
	return description
}

func matchesKeyword(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
