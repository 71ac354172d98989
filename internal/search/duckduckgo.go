package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// DuckDuckGo defaults
const (
	DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"
	DefaultRetries       = 2
	DefaultRetryDelay    = 3 * time.Second
)

const duckDuckGoUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DuckDuckGo scrapes the HTML result page; it needs no API key
type DuckDuckGo struct {
	baseURL    string
	client     *http.Client
	retries    int
	retryDelay time.Duration
	sleep      func(context.Context, time.Duration) error
	log        *logger.Logger
}

// DuckDuckGoOption configures a DuckDuckGo provider
type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoURL points the provider at another endpoint
func WithDuckDuckGoURL(u string) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.baseURL = u }
}

// WithRetries sets how often a throttled request is retried and the initial delay
func WithRetries(retries int, delay time.Duration) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.retries = retries
		d.retryDelay = delay
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) { d.client = c }
}

// NewDuckDuckGo creates a DuckDuckGo provider
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		baseURL:    DefaultDuckDuckGoURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		sleep:      sleepCtx,
		log:        logger.Named("duckduckgo"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements Provider
func (d *DuckDuckGo) Name() string { return SourceDuckDuckGo }

// Search fetches one result page, retrying with doubling delay while throttled
func (d *DuckDuckGo) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	delay := d.retryDelay
	for attempt := 0; ; attempt++ {
		results, throttled, err := d.fetch(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		if !throttled {
			return clip(results, opts.MaxResults), nil
		}
		if attempt >= d.retries {
			return nil, &Error{Provider: SourceDuckDuckGo, Query: query, Message: "still throttled after retries", Cause: ErrRateLimited}
		}
		d.log.Warn().Str("query", query).Int("attempt", attempt+1).Dur("delay", delay).Msg("throttled, backing off")
		if err := d.sleep(ctx, delay); err != nil {
			return nil, &Error{Provider: SourceDuckDuckGo, Query: query, Message: "interrupted while backing off", Cause: err}
		}
		delay *= 2
	}
}

func (d *DuckDuckGo) fetch(ctx context.Context, query string, opts Options) ([]types.SearchResult, bool, error) {
	params := url.Values{}
	params.Set("q", query)
	region := opts.Region
	if region == "" {
		region = "de-de"
	}
	params.Set("kl", region)
	if p := safeSearchParam(opts.SafeSearch); p != "" {
		params.Set("kp", p)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, &Error{Provider: SourceDuckDuckGo, Query: query, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", duckDuckGoUserAgent)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, false, &Error{Provider: SourceDuckDuckGo, Query: query, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, nil
	case resp.StatusCode != http.StatusOK:
		return nil, false, &Error{Provider: SourceDuckDuckGo, Query: query, Status: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, false, &Error{Provider: SourceDuckDuckGo, Query: query, Message: "failed to parse result page", Cause: err}
	}
	if doc.Find(".anomaly-modal__modal, #challenge-form").Length() > 0 {
		return nil, true, nil
	}
	return ParseDuckDuckGoHTML(doc, query), false, nil
}

// ParseDuckDuckGoHTML extracts results from an HTML result page
func ParseDuckDuckGoHTML(doc *goquery.Document, query string) []types.SearchResult {
	var results []types.SearchResult
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := resolveRedirect(href)
		title := strings.TrimSpace(link.Text())
		if target == "" || title == "" {
			return
		}
		results = append(results, types.SearchResult{
			Query:   query,
			Title:   title,
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Source:  SourceDuckDuckGo,
		})
	})
	return results
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}

func safeSearchParam(level string) string {
	switch strings.ToLower(level) {
	case "active", "strict":
		return "1"
	case "off":
		return "-2"
	case "moderate":
		return "-1"
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
