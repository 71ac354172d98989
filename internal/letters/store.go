package letters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gingfrederik/docx"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/types"
)

// FrontMatter is the metadata header of a stored letter
type FrontMatter struct {
	Candidate   string `yaml:"candidate"`
	SourceURL   string `yaml:"source_url"`
	OrgSlug     string `yaml:"org_slug"`
	RunID       string `yaml:"run_id,omitempty"`
	GeneratedAt string `yaml:"generated_at"`
	WordCount   int    `yaml:"word_count"`
	Attempts    int    `yaml:"attempts"`
}

// Store writes approved letters as markdown, optionally with a .docx copy
type Store struct {
	dir   string
	runID string
	docx  bool
	now   func() time.Time
}

// NewStore creates a Store writing under dir
func NewStore(dir, runID string, exportDocx bool) *Store {
	return &Store{dir: dir, runID: runID, docx: exportDocx, now: time.Now}
}

// Dir returns the letters directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the letter for c and returns the markdown path
func (s *Store) Save(c *types.Candidate, d *Draft) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create letters directory: %w", err)
	}

	slug := c.OrgSlug
	if slug == "" {
		slug = orgid.DefaultOrgSlug(c.Name, c.URL)
	}
	fm := FrontMatter{
		Candidate:   c.Name,
		SourceURL:   c.URL,
		OrgSlug:     slug,
		RunID:       s.runID,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		WordCount:   d.WordCount,
		Attempts:    d.Attempts,
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(d.Text))
	sb.WriteString("\n")

	path := filepath.Join(s.dir, slug+".md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write letter %s: %w", path, err)
	}

	if s.docx {
		if err := writeDocx(filepath.Join(s.dir, slug+".docx"), c, d.Text); err != nil {
			return path, err
		}
	}
	return path, nil
}

func writeDocx(path string, c *types.Candidate, text string) error {
	f := docx.NewFile()
	title := f.AddParagraph().AddText("Einladung: " + c.Name)
	title.Size(16)
	f.AddParagraph()

	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(strings.TrimLeft(para, "# "))
		if para == "" {
			continue
		}
		f.AddParagraph().AddText(strings.ReplaceAll(para, "\n", " "))
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to write docx %s: %w", path, err)
	}
	return nil
}
