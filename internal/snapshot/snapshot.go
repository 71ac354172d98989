// Package snapshot writes and reads the per-run candidate snapshot and research notes.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-scout/internal/schemas"
	"github.com/jonathan/outreach-scout/internal/types"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// Snapshot is the audit record of one run, consumed by resume mode
type Snapshot struct {
	GeneratedAt   string            `json:"generated_at"`
	RunID         string            `json:"run_id,omitempty"`
	Accepted      []types.Candidate `json:"accepted"`
	AllCandidates []types.Candidate `json:"all_candidates"`
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// New builds a snapshot from candidate pointers, copying them
func New(runID string, accepted, all []*types.Candidate, now time.Time) Snapshot {
	return Snapshot{
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		RunID:         runID,
		Accepted:      copyCandidates(accepted),
		AllCandidates: copyCandidates(all),
	}
}

func copyCandidates(in []*types.Candidate) []types.Candidate {
	out := make([]types.Candidate, 0, len(in))
	for _, c := range in {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// Write stores the snapshot as indented JSON
func Write(path string, snap Snapshot) error {
	if snap.Accepted == nil {
		snap.Accepted = []types.Candidate{}
	}
	if snap.AllCandidates == nil {
		snap.AllCandidates = []types.Candidate{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads and validates a snapshot file
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if err := schemas.Validate(schemafiles.Snapshot, string(data)); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}
