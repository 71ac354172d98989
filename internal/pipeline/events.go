package pipeline

// EventKind names a gate decision or loop step
type EventKind string

// Event kinds
const (
	EventSkippedURL           EventKind = "skipped_url"
	EventDuplicate            EventKind = "duplicate"
	EventBlacklisted          EventKind = "blacklisted"
	EventNegativeTerm         EventKind = "negative_term"
	EventRegionFiltered       EventKind = "region_filtered"
	EventLanguageFiltered     EventKind = "language_filtered"
	EventKnownOrg             EventKind = "known_org"
	EventDirectoryExpanded    EventKind = "directory_expanded"
	EventEvaluated            EventKind = "evaluated"
	EventAccepted             EventKind = "accepted"
	EventRejected             EventKind = "rejected"
	EventCoordinatorBlacklist EventKind = "coordinator_blacklist"
	EventRefined              EventKind = "refined"
	EventSearchFailed         EventKind = "search_failed"
)

// Event is emitted for every gate decision
type Event struct {
	Kind   EventKind `json:"kind"`
	URL    string    `json:"url,omitempty"`
	Query  string    `json:"query,omitempty"`
	Depth  int       `json:"depth"`
	Detail string    `json:"detail,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event Event)
