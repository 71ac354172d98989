package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/types"
)

// SeedReport summarizes a seeding pass
type SeedReport struct {
	Accepted   int
	Contacted  int
	Duplicates []types.Candidate
}

// SeedFromCandidates registers accepted candidates, dropping slug duplicates.
// Candidates without an OrgSlug get the deterministic one assigned.
func (r *Registry) SeedFromCandidates(accepted []types.Candidate) ([]types.Candidate, SeedReport) {
	var report SeedReport
	seen := make(map[string]bool)
	deduped := make([]types.Candidate, 0, len(accepted))

	for _, c := range accepted {
		name := c.Name
		if name == "" {
			name = c.URL
		}
		slug := c.OrgSlug
		if slug == "" {
			slug = orgid.DefaultOrgSlug(name, c.URL)
		}
		if seen[slug] {
			report.Duplicates = append(report.Duplicates, c)
			continue
		}
		seen[slug] = true
		c.OrgSlug = slug
		deduped = append(deduped, c)

		r.Upsert(slug, UpsertOptions{
			Name:   name,
			Domain: orgid.DomainKey(c.URL),
			URL:    c.URL,
			Status: StatusAccepted,
			Notes:  "seeded from snapshot",
		})
		report.Accepted++
	}
	return deduped, report
}

// SeedFromLetters marks every organization with a stored letter as contacted
func (r *Registry) SeedFromLetters(dir string) (int, error) {
	entries, err := LetterRecipients(dir)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		slug := e.Slug
		if slug == "" {
			slug = orgid.DefaultOrgSlug(e.Name, e.URL)
		}
		r.Upsert(slug, UpsertOptions{
			Name:   e.Name,
			Domain: orgid.DomainKey(e.URL),
			URL:    e.URL,
			Status: StatusContacted,
			Notes:  "seeded from letters",
		})
	}
	return len(entries), nil
}

// LetterRecipient is the identity found in a stored letter's front matter
type LetterRecipient struct {
	Name string
	URL  string
	Slug string
}

// letterFrontMatter mirrors the identity keys of the letter header
type letterFrontMatter struct {
	Candidate string `yaml:"candidate"`
	SourceURL string `yaml:"source_url"`
	OrgSlug   string `yaml:"org_slug"`
}

// LetterRecipients scans dir for markdown letters and reads their front matter
func LetterRecipients(dir string) ([]LetterRecipient, error) {
	log := logger.Named("registry")
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	var out []LetterRecipient
	for _, p := range paths {
		fm, err := readFrontMatter(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("skipping letter with unreadable front matter")
			continue
		}
		if fm == nil || fm.Candidate == "" || fm.SourceURL == "" {
			continue
		}
		out = append(out, LetterRecipient{Name: fm.Candidate, URL: fm.SourceURL, Slug: fm.OrgSlug})
	}
	return out, nil
}

// readFrontMatter decodes the YAML block between the leading "---" lines.
// A file without a header yields nil.
func readFrontMatter(path string) (*letterFrontMatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	rest, ok := strings.CutPrefix(text, "---\n")
	if !ok {
		return nil, nil
	}
	header, _, ok := strings.Cut(rest, "\n---")
	if !ok {
		return nil, fmt.Errorf("unterminated front matter")
	}
	var fm letterFrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return &fm, nil
}
