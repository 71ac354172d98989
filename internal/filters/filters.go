// Package filters provides the cheap, pure gates applied to candidates before any judgment call.
package filters

import (
	"net/url"
	"strings"

	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/types"
)

// CandidateMatchesRegion rejects candidates mentioning an off-region keyword.
// Candidates without any regional signal pass. The matched keyword is returned on rejection.
func CandidateMatchesRegion(c *types.Candidate, region config.Region) (bool, string) {
	text := c.Fingerprint()
	for _, kw := range region.OffRegionKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return false, kw
		}
	}
	return true, ""
}

// PositiveSignals returns the positive region keywords found in the candidate text
func PositiveSignals(c *types.Candidate, region config.Region) []string {
	text := c.Fingerprint()
	var found []string
	for _, kw := range region.PositiveKeywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// ShouldSkipURL reports whether a URL points at a file download or a negative domain
func ShouldSkipURL(rawURL string, rules config.GateRules) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return true
	}

	path := strings.ToLower(trimmed)
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Path != "" {
		path = strings.ToLower(parsed.Path)
	}
	for _, suffix := range rules.NegativeSuffixes {
		if strings.HasSuffix(path, strings.ToLower(suffix)) {
			return true
		}
	}

	host := orgid.DomainKey(trimmed)
	for _, domain := range rules.NegativeDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// MatchNegativeTerm returns the first negative term found in the candidate's title or snippet
func MatchNegativeTerm(c *types.Candidate, rules config.GateRules) (string, bool) {
	text := c.TitleAndSnippet()
	for _, term := range rules.NegativeTerms {
		term = strings.ToLower(term)
		if term != "" && strings.Contains(text, term) {
			return term, true
		}
	}
	return "", false
}

// LooksLikeDirectoryCandidate flags pages that list many organizations rather than being one
func LooksLikeDirectoryCandidate(c *types.Candidate, rules config.GateRules) bool {
	if c.Directory {
		return true
	}
	text := c.TitleAndSnippet() + " " + strings.ToLower(c.Summary)
	for _, hint := range rules.DirectoryHints {
		hint = strings.ToLower(hint)
		if hint != "" && strings.Contains(text, hint) {
			return true
		}
	}
	return false
}
