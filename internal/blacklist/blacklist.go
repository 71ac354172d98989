// Package blacklist maintains the persistent list of domains that must never be considered again.
package blacklist

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
	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/schemas"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// Tag records why a domain was suppressed
type Tag string

// Entry tags
const (
	TagAuto        Tag = "auto"
	TagCoordinator Tag = "coordinator"
	TagContacted   Tag = "contacted"
	TagManual      Tag = "manual"
)

// Entry is a single suppressed domain
type Entry struct {
	Domain  string            `json:"domain"`
	URL     string            `json:"url"`
	Reason  string            `json:"reason"`
	Tag     Tag               `json:"tag"`
	AddedAt string            `json:"added_at"`
	Source  string            `json:"source,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type fileFormat struct {
	GeneratedAt string  `json:"generated_at"`
	Entries     []Entry `json:"entries"`
}

// AddOptions carries the optional fields of an Add
type AddOptions struct {
	Tag    Tag
	Source string
	Meta   map[string]string
}

// Manager owns the blacklist file. One entry per domain key, last write wins.
type Manager struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	changed bool
	now     func() time.Time
}

// New creates an empty manager persisting to path
func New(path string) *Manager {
	return &Manager{
		path:    path,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Load reads the blacklist at path. A missing file yields an empty list; entries that do not
// match the blacklist schema are skipped.
func Load(path string) (*Manager, error) {
	m := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read blacklist %s: %w", path, err)
	}

	var payload struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse blacklist %s: %w", path, err)
	}
	log := logger.Named("blacklist")
	for i, raw := range payload.Entries {
		doc := fmt.Sprintf(`{"entries": [%s]}`, raw)
		if err := schemas.Validate(schemafiles.Blacklist, doc); err != nil {
			log.Warn().Err(err).Str("path", path).Int("index", i).Msg("skipping invalid blacklist entry")
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		key := orgid.DomainKey(e.Domain)
		if key == "" {
			key = orgid.DomainKey(e.URL)
		}
		if key == "" {
			continue
		}
		e.Domain = key
		if e.Tag == "" {
			e.Tag = TagManual
		}
		m.entries[key] = e
	}
	return m, nil
}

// Path returns the backing file path
func (m *Manager) Path() string {
	return m.path
}

// IsBlacklisted reports whether the URL's domain is suppressed
func (m *Manager) IsBlacklisted(rawURL string) (*Entry, bool) {
	key := orgid.DomainKey(rawURL)
	if key == "" {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return &e, true
}

// Add suppresses the URL's domain, replacing any existing entry
func (m *Manager) Add(rawURL, reason string, opts AddOptions) (Entry, error) {
	key := orgid.DomainKey(rawURL)
	if key == "" {
		return Entry{}, fmt.Errorf("cannot blacklist %q: no domain", rawURL)
	}
	tag := opts.Tag
	if tag == "" {
		tag = TagAuto
	}
	e := Entry{
		Domain:  key,
		URL:     rawURL,
		Reason:  reason,
		Tag:     tag,
		AddedAt: m.now().UTC().Format(time.RFC3339),
		Source:  opts.Source,
		Meta:    opts.Meta,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	m.changed = true
	return e, nil
}

// Remove deletes the entry for a domain or URL. Returns false when nothing matched.
func (m *Manager) Remove(domainOrURL string) bool {
	key := orgid.DomainKey(domainOrURL)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	m.changed = true
	return true
}

// Entries returns all entries sorted by domain
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked()
}

// Len returns the number of entries
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Persist writes the file when there were changes. Returns whether it wrote.
func (m *Manager) Persist() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.changed {
		return false, nil
	}

	payload := fileFormat{
		GeneratedAt: m.now().UTC().Format(time.RFC3339),
		Entries:     m.sortedLocked(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal blacklist: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create blacklist directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write blacklist %s: %w", m.path, err)
	}
	m.changed = false
	return true, nil
}

func (m *Manager) sortedLocked() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}
