package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// FetchStatus values for cached pages
const (
	FetchStatusSuccess  = "success"   // Page fetched successfully
	FetchStatusError    = "error"     // Generic error (may retry)
	FetchStatusNotFound = "not_found" // 404/410 - permanent failure
	FetchStatusBlocked  = "blocked"   // 403/429 - blocked by server
)

// DefaultPageCacheTTL is the default time-to-live for cached pages (7 days)
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// Retry backoff for transient failures: 1 min → 5 min → 25 min → 2 hours (capped)
const (
	baseRetryDelay = time.Minute
	maxRetryDelay  = 2 * time.Hour
	retryFactor    = 5
)

// Page is a cached fetch result
type Page struct {
	URL                string
	HTML               string
	Text               string
	ContentHash        string
	HTTPStatus         int
	FetchStatus        string
	ErrorMessage       string
	IsPermanentFailure bool
	RetryCount         int
	RetryAfter         time.Time
	FetchedAt          time.Time
}

// IsFresh returns true if the page was fetched within maxAge
func (p *Page) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(p.FetchedAt) < maxAge
}

// IsPermanentHTTPStatus returns true for status codes that indicate permanent failure
func IsPermanentHTTPStatus(status int) bool {
	switch status {
	case 404, 410, 451:
		return true
	default:
		return false
	}
}

// FetchStatusFromHTTP determines fetch status from HTTP status code
func FetchStatusFromHTTP(status int) string {
	switch {
	case status >= 200 && status < 300:
		return FetchStatusSuccess
	case status == 404 || status == 410:
		return FetchStatusNotFound
	case status == 403 || status == 429:
		return FetchStatusBlocked
	default:
		return FetchStatusError
	}
}

// HashContent computes SHA-256 hash of content for change detection
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// retryDelay returns the backoff after the given number of failures
func retryDelay(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	delay := baseRetryDelay
	for i := 1; i < failures && i <= 3; i++ {
		delay *= retryFactor
	}
	return min(delay, maxRetryDelay)
}

// GetPage returns the cached page for url, or nil when none exists
func (db *DB) GetPage(ctx context.Context, url string) (*Page, error) {
	var (
		p          Page
		hash, msg  sql.NullString
		html, text sql.NullString
		retryAfter sql.NullInt64
		fetchedAt  int64
	)
	err := db.QueryRowContext(ctx, `
		SELECT url, html, text, content_hash, http_status, fetch_status, error_message,
		       is_permanent_failure, retry_count, retry_after, fetched_at
		FROM pages WHERE url = ?
	`, url).Scan(&p.URL, &html, &text, &hash, &p.HTTPStatus, &p.FetchStatus, &msg,
		&p.IsPermanentFailure, &p.RetryCount, &retryAfter, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	p.HTML = html.String
	p.Text = text.String
	p.ContentHash = hash.String
	p.ErrorMessage = msg.String
	if retryAfter.Valid {
		p.RetryAfter = time.Unix(0, retryAfter.Int64)
	}
	p.FetchedAt = time.Unix(0, fetchedAt)
	return &p, nil
}

// GetFreshPage retrieves a page only if it's not stale and was successful
func (db *DB) GetFreshPage(ctx context.Context, url string, maxAge time.Duration) (*Page, error) {
	page, err := db.GetPage(ctx, url)
	if err != nil || page == nil {
		return nil, err
	}
	if page.FetchStatus != FetchStatusSuccess {
		return nil, nil
	}
	if !page.IsFresh(db.clock(), maxAge) {
		return nil, nil
	}
	return page, nil
}

// UpsertPage stores a successful fetch, clearing any failure bookkeeping
func (db *DB) UpsertPage(ctx context.Context, page *Page) error {
	if page.FetchStatus == "" {
		page.FetchStatus = FetchStatusSuccess
	}
	page.ContentHash = HashContent(page.HTML)
	page.FetchedAt = db.clock()

	_, err := db.ExecContext(ctx, `
		INSERT INTO pages (url, html, text, content_hash, http_status, fetch_status,
		                   error_message, is_permanent_failure, retry_count, retry_after, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, 0, 0, NULL, ?)
		ON CONFLICT(url) DO UPDATE SET
		    html = excluded.html,
		    text = excluded.text,
		    content_hash = excluded.content_hash,
		    http_status = excluded.http_status,
		    fetch_status = excluded.fetch_status,
		    error_message = NULL,
		    is_permanent_failure = 0,
		    retry_count = 0,
		    retry_after = NULL,
		    fetched_at = excluded.fetched_at
	`, page.URL, page.HTML, page.Text, page.ContentHash, page.HTTPStatus, page.FetchStatus,
		page.FetchedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

// RecordFailedFetch records a failed fetch attempt with exponential backoff.
// Permanent failures are never retried.
func (db *DB) RecordFailedFetch(ctx context.Context, url string, httpStatus int, errorMsg string) error {
	existing, err := db.GetPage(ctx, url)
	if err != nil {
		return err
	}

	failures := 1
	permanent := IsPermanentHTTPStatus(httpStatus)
	if existing != nil && existing.FetchStatus != FetchStatusSuccess {
		failures = existing.RetryCount + 1
		permanent = permanent || existing.IsPermanentFailure
	}

	now := db.clock()
	var retryAfter any
	if !permanent {
		retryAfter = now.Add(retryDelay(failures)).UnixNano()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO pages (url, http_status, fetch_status, error_message, is_permanent_failure,
		                   retry_count, retry_after, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
		    http_status = excluded.http_status,
		    fetch_status = excluded.fetch_status,
		    error_message = excluded.error_message,
		    is_permanent_failure = excluded.is_permanent_failure,
		    retry_count = excluded.retry_count,
		    retry_after = excluded.retry_after,
		    fetched_at = excluded.fetched_at
	`, url, httpStatus, FetchStatusFromHTTP(httpStatus), errorMsg, permanent, failures, retryAfter, now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

// ShouldSkipURL checks if a URL should be skipped due to a permanent failure or active backoff
func (db *DB) ShouldSkipURL(ctx context.Context, url string) (bool, string, error) {
	page, err := db.GetPage(ctx, url)
	if err != nil {
		return false, "", err
	}
	if page == nil {
		return false, "", nil
	}

	if page.IsPermanentFailure {
		reason := "permanent failure"
		if page.ErrorMessage != "" {
			reason = page.ErrorMessage
		}
		return true, reason, nil
	}

	if !page.RetryAfter.IsZero() && db.clock().Before(page.RetryAfter) {
		return true, "retry backoff", nil
	}

	return false, "", nil
}
