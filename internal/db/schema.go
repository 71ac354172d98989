package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA temp_store = MEMORY;

-- Search results: one batch per provider call, newest batch wins on read
CREATE TABLE IF NOT EXISTS search_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    query_key TEXT NOT NULL,
    query TEXT NOT NULL,
    batch INTEGER NOT NULL,
    position INTEGER NOT NULL,
    title TEXT,
    url TEXT NOT NULL,
    snippet TEXT,
    source TEXT
);

CREATE INDEX IF NOT EXISTS idx_search_results_query ON search_results(query_key, batch);

-- Pages: fetched HTML plus failure bookkeeping for skip and backoff
CREATE TABLE IF NOT EXISTS pages (
    url TEXT PRIMARY KEY,
    html TEXT,
    text TEXT,
    content_hash TEXT,
    http_status INTEGER DEFAULT 0,
    fetch_status TEXT NOT NULL,
    error_message TEXT,
    is_permanent_failure BOOLEAN DEFAULT 0,
    retry_count INTEGER DEFAULT 0,
    retry_after INTEGER,
    fetched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(fetch_status);

-- Site snapshots: summarized web context per URL, stored as JSON
CREATE TABLE IF NOT EXISTS site_snapshots (
    url TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    fetched_at INTEGER NOT NULL
);

-- Directory expansions: entries scraped from collection pages, stored as JSON
CREATE TABLE IF NOT EXISTS directory_expansions (
    url TEXT PRIMARY KEY,
    entries TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
