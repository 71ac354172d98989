package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-scout/internal/types"
)

// QueryKey normalizes a search query for cache lookups
func QueryKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// SaveSearchResults stores results as a new batch for the query.
// Empty result sets are not stored so they never shadow an older useful batch.
func (db *DB) SaveSearchResults(ctx context.Context, query string, results []types.SearchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	batch := db.clock().UnixNano()
	key := QueryKey(query)
	for i, r := range results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO search_results (query_key, query, batch, position, title, url, snippet, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, key, query, batch, i, r.Title, r.URL, r.Snippet, r.Source)
		if err != nil {
			return fmt.Errorf("failed to insert search result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search results: %w", err)
	}
	return nil
}

// LoadSearchResults returns the most recent batch stored for the query, or nil
func (db *DB) LoadSearchResults(ctx context.Context, query string) ([]types.SearchResult, error) {
	key := QueryKey(query)
	rows, err := db.QueryContext(ctx, `
		SELECT query, title, url, snippet, source
		FROM search_results
		WHERE query_key = ? AND batch = (SELECT MAX(batch) FROM search_results WHERE query_key = ?)
		ORDER BY position
	`, key, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query search results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []types.SearchResult
	for rows.Next() {
		var r types.SearchResult
		if err := rows.Scan(&r.Query, &r.Title, &r.URL, &r.Snippet, &r.Source); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return results, nil
}
