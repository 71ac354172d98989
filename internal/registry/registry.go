// Package registry provides the persistent organization registry used to deduplicate
// candidates across runs.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/schemas"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// Status is the outreach status of an organization
type Status string

// Registry statuses
const (
	StatusSeen      Status = "seen"
	StatusAccepted  Status = "accepted"
	StatusContacted Status = "contacted"
	StatusRejected  Status = "rejected"
)

// OrganizationRecord is the canonical identity of an organization, keyed by slug
type OrganizationRecord struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Domain     string `json:"domain"`
	PrimaryURL string `json:"primary_url"`
	Status     Status `json:"status"`
	Notes      string `json:"notes"`
	LastSeen   string `json:"last_seen"`
}

type fileFormat struct {
	GeneratedAt string               `json:"generated_at"`
	Records     []OrganizationRecord `json:"records"`
}

// Registry is a mutex-protected, file-backed map of slug to record
type Registry struct {
	mu      sync.Mutex
	path    string
	records map[string]*OrganizationRecord
	changed bool
	now     func() time.Time
}

// New creates an empty registry that will persist to path
func New(path string) *Registry {
	return &Registry{
		path:    path,
		records: make(map[string]*OrganizationRecord),
		now:     time.Now,
	}
}

// Load reads the registry file at path. A missing or unparsable file yields an empty registry;
// records that do not match the registry schema are skipped.
func Load(path string) (*Registry, error) {
	r := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	log := logger.Named("registry")
	var payload struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("unparsable registry, starting empty")
		return r, nil
	}

	for i, raw := range payload.Records {
		if err := schemas.Validate(schemafiles.Registry, recordDocument("records", raw)); err != nil {
			log.Warn().Err(err).Str("path", path).Int("index", i).Msg("skipping invalid registry record")
			continue
		}
		var rec OrganizationRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Slug == "" || rec.Domain == "" {
			continue
		}
		if rec.Name == "" {
			rec.Name = rec.Slug
		}
		if rec.Status == "" {
			rec.Status = StatusSeen
		}
		if rec.LastSeen == "" {
			rec.LastSeen = r.timestamp()
		}
		r.records[rec.Slug] = &rec
	}
	return r, nil
}

// recordDocument wraps a single record so it can be checked against the file schema
func recordDocument(key string, raw json.RawMessage) string {
	return fmt.Sprintf(`{%q: [%s]}`, key, raw)
}

// Path returns the backing file path
func (r *Registry) Path() string {
	return r.path
}

// Save writes the registry when it changed. Returns the written path, or "" when nothing changed.
func (r *Registry) Save() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.changed {
		return "", nil
	}

	records := make([]OrganizationRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Slug < records[j].Slug })

	payload := fileFormat{GeneratedAt: r.timestamp(), Records: records}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create registry directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write registry %s: %w", r.path, err)
	}
	r.changed = false
	return r.path, nil
}

// Get returns a copy of the record for slug
func (r *Registry) Get(slug string) (OrganizationRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[slug]
	if !ok {
		return OrganizationRecord{}, false
	}
	return *rec, true
}

// UpsertOptions holds the mutable fields of an upsert
type UpsertOptions struct {
	Name   string
	Domain string
	URL    string
	Status Status
	Notes  string
}

// Upsert creates the record for slug or merges non-empty fields into the existing one
func (r *Registry) Upsert(slug string, opts UpsertOptions) OrganizationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	rec, ok := r.records[slug]
	if !ok {
		status := opts.Status
		if status == "" {
			status = StatusSeen
		}
		rec = &OrganizationRecord{
			Slug:       slug,
			Name:       opts.Name,
			Domain:     opts.Domain,
			PrimaryURL: opts.URL,
			Status:     status,
			Notes:      opts.Notes,
			LastSeen:   now,
		}
		if rec.Name == "" {
			rec.Name = slug
		}
		r.records[slug] = rec
	} else {
		if opts.Name != "" {
			rec.Name = opts.Name
		}
		if opts.URL != "" {
			rec.PrimaryURL = opts.URL
		}
		if opts.Domain != "" && rec.Domain == "" {
			rec.Domain = opts.Domain
		}
		if opts.Notes != "" {
			rec.Notes = opts.Notes
		}
		if opts.Status != "" {
			rec.Status = opts.Status
		}
		rec.LastSeen = now
	}
	r.changed = true
	return *rec
}

// MarkStatus updates the status (and notes, if given) of an existing record
func (r *Registry) MarkStatus(slug string, status Status, notes string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[slug]
	if !ok {
		return false
	}
	rec.Status = status
	if notes != "" {
		rec.Notes = notes
	}
	rec.LastSeen = r.timestamp()
	r.changed = true
	return true
}

// RecentRecords returns up to limit records ordered by last_seen, newest first
func (r *Registry) RecentRecords(limit int) []OrganizationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]OrganizationRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, *rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].LastSeen == records[j].LastSeen {
			return records[i].Slug < records[j].Slug
		}
		return records[i].LastSeen > records[j].LastSeen
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// IsActive reports whether slug is known with status seen, accepted or contacted
func (r *Registry) IsActive(slug string) bool {
	rec, ok := r.Get(slug)
	if !ok {
		return false
	}
	switch rec.Status {
	case StatusSeen, StatusAccepted, StatusContacted:
		return true
	}
	return false
}

// IsTerminal reports whether slug was already accepted or contacted
func (r *Registry) IsTerminal(slug string) bool {
	rec, ok := r.Get(slug)
	if !ok {
		return false
	}
	return rec.Status == StatusAccepted || rec.Status == StatusContacted
}

// Len returns the number of records
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Changed reports whether there are unsaved modifications
func (r *Registry) Changed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed
}

// timestamp uses second precision UTC RFC3339, which sorts lexically
func (r *Registry) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}
