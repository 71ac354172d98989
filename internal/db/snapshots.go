package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/outreach-scout/internal/types"
)

// SaveSnapshot stores the site snapshot for its URL, replacing any older one
func (db *DB) SaveSnapshot(ctx context.Context, snap *types.SiteSnapshot) error {
	if snap == nil || snap.URL == "" {
		return fmt.Errorf("snapshot has no URL")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO site_snapshots (url, data, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at
	`, snap.URL, string(data), db.clock().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the cached snapshot for url, or nil
func (db *DB) GetSnapshot(ctx context.Context, url string) (*types.SiteSnapshot, error) {
	var data string
	err := db.QueryRowContext(ctx, `SELECT data FROM site_snapshots WHERE url = ?`, url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap types.SiteSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveDirectoryEntries stores the entries parsed from a directory page.
// An empty slice is stored too, so pages with no entries are not fetched again.
func (db *DB) SaveDirectoryEntries(ctx context.Context, url string, entries []types.DirectoryEntry) error {
	if entries == nil {
		entries = []types.DirectoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal directory entries: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO directory_expansions (url, entries, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET entries = excluded.entries, created_at = excluded.created_at
	`, url, string(data), db.clock().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save directory entries: %w", err)
	}
	return nil
}

// LoadDirectoryEntries returns the cached entries for url; found is false when the page was never expanded
func (db *DB) LoadDirectoryEntries(ctx context.Context, url string) (entries []types.DirectoryEntry, found bool, err error) {
	var data string
	err = db.QueryRowContext(ctx, `SELECT entries FROM directory_expansions WHERE url = ?`, url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load directory entries: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode directory entries: %w", err)
	}
	return entries, true, nil
}
