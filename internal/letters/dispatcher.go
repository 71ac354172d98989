package letters

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-scout/internal/blacklist"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/orgid"
	"github.com/jonathan/outreach-scout/internal/registry"
	"github.com/jonathan/outreach-scout/internal/types"
)

// ContactedReason is the blacklist reason recorded after a letter was written
const ContactedReason = "already contacted"

// Drafter produces an approved letter for a candidate
type Drafter interface {
	Draft(ctx context.Context, c *types.Candidate) (*Draft, error)
}

// Saver persists an approved letter and returns its path
type Saver interface {
	Save(c *types.Candidate, d *Draft) (string, error)
}

// ContextProvider fetches the web context of a candidate
type ContextProvider interface {
	Context(ctx context.Context, url string) (*types.SiteSnapshot, error)
}

// DispatcherOptions configures a Dispatcher
type DispatcherOptions struct {
	Limit       int // letters per run
	Concurrency int
	Registry    *registry.Registry
	Blacklist   *blacklist.Manager
	Context     ContextProvider // optional
}

// Summary is the outcome of all letter tasks of a run
type Summary struct {
	Scheduled int
	Sent      int
	Failed    int
	Paths     []string
	Failures  map[string]string // candidate URL to error
}

// Dispatcher runs letter tasks in the background, bounded by a concurrency limit and a
// per-run cap. Task failures and panics are recorded, never propagated.
type Dispatcher struct {
	ctx    context.Context
	writer Drafter
	store  Saver
	opts   DispatcherOptions
	log    *logger.Logger

	mu        sync.Mutex
	scheduled int
	closed    bool
	summary   Summary

	queue   chan *types.Candidate
	fed     chan struct{}
	group   errgroup.Group
	closing sync.Once
}

// NewDispatcher creates a Dispatcher and starts its feeder. Finalize must be called.
func NewDispatcher(ctx context.Context, writer Drafter, store Saver, opts DispatcherOptions) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	d := &Dispatcher{
		ctx:     ctx,
		writer:  writer,
		store:   store,
		opts:    opts,
		log:     logger.Named("dispatcher"),
		queue:   make(chan *types.Candidate, max(opts.Limit, 1)),
		fed:     make(chan struct{}),
		summary: Summary{Failures: make(map[string]string)},
	}
	d.group.SetLimit(opts.Concurrency)
	go d.feed()
	return d
}

// feed hands queued candidates to the errgroup, blocking here instead of in Schedule
func (d *Dispatcher) feed() {
	defer close(d.fed)
	for c := range d.queue {
		d.group.Go(func() error {
			d.run(c)
			return nil
		})
	}
}

// Schedule queues a letter for c. It returns false once the per-run cap is reached or
// after Finalize.
func (d *Dispatcher) Schedule(c *types.Candidate) bool {
	d.mu.Lock()
	if d.closed || d.scheduled >= d.opts.Limit {
		d.mu.Unlock()
		return false
	}
	d.scheduled++
	d.summary.Scheduled++
	c.LetterStatus = types.LetterQueued
	// buffered to Limit, so the send never blocks
	d.queue <- c
	d.mu.Unlock()

	d.log.Debug().Str("candidate", c.Name).Str("url", c.URL).Msg("letter queued")
	return true
}

// Remaining returns how many letters can still be scheduled
func (d *Dispatcher) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return max(d.opts.Limit-d.scheduled, 0)
}

// Finalize waits for every scheduled task and returns the summary
func (d *Dispatcher) Finalize() Summary {
	d.closing.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.queue)
	})
	<-d.fed
	_ = d.group.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.summary
	out.Paths = append([]string(nil), d.summary.Paths...)
	out.Failures = make(map[string]string, len(d.summary.Failures))
	for k, v := range d.summary.Failures {
		out.Failures[k] = v
	}
	return out
}

func (d *Dispatcher) run(c *types.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(c, fmt.Errorf("letter task panicked: %v", r))
		}
	}()

	if c.Context == nil && d.opts.Context != nil {
		if snap, err := d.opts.Context.Context(d.ctx, c.URL); err == nil {
			c.Context = snap
		} else {
			d.log.Debug().Err(err).Str("url", c.URL).Msg("no site context for letter")
		}
	}

	draft, err := d.writer.Draft(d.ctx, c)
	if err != nil {
		d.fail(c, err)
		return
	}
	path, err := d.store.Save(c, draft)
	if err != nil {
		d.fail(c, err)
		return
	}

	c.LetterPath = path
	c.LetterStatus = types.LetterSent
	d.markContacted(c)

	d.mu.Lock()
	d.summary.Sent++
	d.summary.Paths = append(d.summary.Paths, path)
	d.mu.Unlock()
	d.log.Info().Str("candidate", c.Name).Str("path", path).Int("attempts", draft.Attempts).Msg("letter written")
}

// markContacted records the outreach so no later run contacts the organization again
func (d *Dispatcher) markContacted(c *types.Candidate) {
	slug := c.OrgSlug
	if slug == "" {
		slug = orgid.DefaultOrgSlug(c.Name, c.URL)
	}
	if d.opts.Registry != nil {
		if !d.opts.Registry.MarkStatus(slug, registry.StatusContacted, "letter written") {
			d.opts.Registry.Upsert(slug, registry.UpsertOptions{
				Name:   c.Name,
				Domain: orgid.DomainKey(c.URL),
				URL:    c.URL,
				Status: registry.StatusContacted,
				Notes:  "letter written",
			})
		}
	}
	if d.opts.Blacklist != nil {
		if _, err := d.opts.Blacklist.Add(c.URL, ContactedReason, blacklist.AddOptions{
			Tag:    blacklist.TagContacted,
			Source: "letters",
			Meta:   map[string]string{"org_slug": slug, "letter": c.LetterPath},
		}); err != nil {
			d.log.Warn().Err(err).Str("url", c.URL).Msg("failed to blacklist contacted candidate")
			return
		}
		if _, err := d.opts.Blacklist.Persist(); err != nil {
			d.log.Warn().Err(err).Msg("failed to persist blacklist")
		}
	}
}

func (d *Dispatcher) fail(c *types.Candidate, err error) {
	c.LetterStatus = types.LetterFailed
	c.AddNote("letter failed: " + err.Error())

	d.mu.Lock()
	d.summary.Failed++
	d.summary.Failures[c.URL] = err.Error()
	d.mu.Unlock()
	d.log.Warn().Err(err).Str("candidate", c.Name).Msg("letter task failed")
}
