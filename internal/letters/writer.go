package letters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/outreach-scout/internal/judge"
	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/prompts"
	"github.com/jonathan/outreach-scout/internal/types"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// Writer defaults
const (
	DefaultMaxWords   = 220
	DefaultMaxRetries = 3
)

const promptFile = "outreach.json"

// Draft is an approved letter
type Draft struct {
	Text      string
	WordCount int
	Attempts  int
}

// DraftError is returned when no attempt passed the QA loop
type DraftError struct {
	Candidate string
	Attempts  int
	Issues    []string
	Cause     error
}

func (e *DraftError) Error() string {
	msg := fmt.Sprintf("letter for %s not approved after %d attempts", e.Candidate, e.Attempts)
	if len(e.Issues) > 0 {
		msg += ": " + strings.Join(e.Issues, "; ")
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *DraftError) Unwrap() error {
	return e.Cause
}

// WriterOptions configures a Writer
type WriterOptions struct {
	Identity   string
	MaxWords   int
	MaxRetries int
}

// Writer generates letters and runs them through the local rules and the review call
type Writer struct {
	client llm.Client
	opts   WriterOptions
	log    *logger.Logger
}

// NewWriter creates a Writer, filling unset limits with defaults
func NewWriter(client llm.Client, opts WriterOptions) *Writer {
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	return &Writer{client: client, opts: opts, log: logger.Named("letters")}
}

type review struct {
	Approved bool     `json:"approved"`
	Issues   []string `json:"issues"`
}

// Draft generates a letter for c. Each rejected attempt feeds its issues into the next one.
func (w *Writer) Draft(ctx context.Context, c *types.Candidate) (*Draft, error) {
	var issues []string
	var lastErr error

	for attempt := 1; attempt <= w.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &DraftError{Candidate: c.Name, Attempts: attempt - 1, Issues: issues, Cause: err}
		}

		text, err := w.generate(ctx, c, issues)
		if err != nil {
			lastErr = err
			issues = nil
			w.log.Warn().Err(err).Str("candidate", c.Name).Int("attempt", attempt).Msg("letter generation failed")
			continue
		}
		lastErr = nil

		issues = nil
		for _, v := range Check(text, w.opts.MaxWords) {
			issues = append(issues, v.Message)
		}
		if len(issues) == 0 {
			issues = w.review(ctx, c, text)
		}
		if len(issues) == 0 {
			return &Draft{Text: text, WordCount: CountWords(text), Attempts: attempt}, nil
		}
		w.log.Debug().Str("candidate", c.Name).Int("attempt", attempt).Strs("issues", issues).Msg("letter rejected")
	}

	return nil, &DraftError{Candidate: c.Name, Attempts: w.opts.MaxRetries, Issues: issues, Cause: lastErr}
}

func (w *Writer) generate(ctx context.Context, c *types.Candidate, issues []string) (string, error) {
	feedback := ""
	if len(issues) > 0 {
		feedback = "Überarbeite den vorherigen Entwurf. Probleme:\n- " + strings.Join(issues, "\n- ")
	}
	contextText := "nicht verfügbar"
	if c.Context != nil {
		contextText = strings.TrimSpace(c.Context.Text())
	}
	prompt, err := prompts.Render(promptFile, "write-letter", map[string]string{
		"Identity":  w.opts.Identity,
		"Candidate": judge.Describe(c),
		"Context":   contextText,
		"MaxWords":  strconv.Itoa(w.opts.MaxWords),
		"Feedback":  feedback,
	})
	if err != nil {
		return "", err
	}
	text, err := w.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(llm.CleanJSONBlock(text)), nil
}

// review returns the reviewer's issues; a malformed review counts as a rejection
func (w *Writer) review(ctx context.Context, c *types.Candidate, text string) []string {
	prompt, err := prompts.Render(promptFile, "review-letter", map[string]string{
		"Candidate": c.Name,
		"MaxWords":  strconv.Itoa(w.opts.MaxWords),
		"Letter":    text,
	})
	if err != nil {
		return []string{err.Error()}
	}
	raw, err := w.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return []string{"Prüfung nicht verfügbar"}
	}

	parsed := judge.Parse[review](raw, schemafiles.LetterReview)
	r, ok := parsed.Get()
	if !ok {
		w.log.Warn().Err(parsed.Err()).Str("candidate", c.Name).Msg("malformed letter review")
		return []string{"Prüfung nicht auswertbar"}
	}
	if r.Approved {
		return nil
	}
	if len(r.Issues) == 0 {
		return []string{"vom Prüfer abgelehnt"}
	}
	return r.Issues
}
