// Package orgid derives stable organization identifiers from candidate names and URLs.
package orgid

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// genericSegments are URL path segments that never identify an organization on their own
var genericSegments = map[string]bool{
	"event": true, "events": true, "veranstaltung": true, "veranstaltungen": true,
	"tag": true, "tags": true,
	"blog": true, "news": true,
	"category": true, "kategorie": true,
	"projekt": true, "projekte": true, "project": true, "projects": true,
	"de": true, "en": true,
}

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash     = regexp.MustCompile(`-{2,}`)
	transliterate = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
)

// DomainKey normalizes a URL to its bare host: lowercased, without userinfo, port or "www.".
// Inputs without a parsable host are returned lowercased.
func DomainKey(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(raw)
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return strings.ToLower(raw)
	}
	return host
}

// Slugify lowercases, transliterates German umlauts and collapses everything else to dashes
func Slugify(value string) string {
	value = transliterate.Replace(strings.ToLower(value))
	value = nonSlugChars.ReplaceAllString(value, "-")
	value = multiDash.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// DefaultOrgSlug derives the deterministic slug for a candidate: the domain plus the first
// URL path segment when it is meaningful, otherwise the first words of the name.
func DefaultOrgSlug(name, rawURL string) string {
	domain := DomainKey(rawURL)
	key := firstMeaningfulSegment(rawURL)
	if key == "" {
		key = nameKey(name, domain)
	}
	if domain == "" {
		return Slugify(key)
	}
	return Slugify(domain + "-" + key)
}

// firstMeaningfulSegment returns the first path segment unless it is generic or numeric
func firstMeaningfulSegment(rawURL string) string {
	candidate := strings.TrimSpace(rawURL)
	if candidate == "" {
		return ""
	}
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	for _, part := range strings.Split(parsed.Path, "/") {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		if genericSegments[lower] || isDigits(lower) {
			return ""
		}
		return part
	}
	return ""
}

func nameKey(name, domain string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = domain
	}
	words := strings.Fields(cleaned)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, "-")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
