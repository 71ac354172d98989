// Package schemas embeds the JSON Schemas for judgment responses and persisted files.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// Schema names
const (
	Evaluation   = "evaluation.schema.json"
	Coordination = "coordination.schema.json"
	Resolution   = "resolution.schema.json"
	Refinement   = "refinement.schema.json"
	Plan         = "plan.schema.json"
	LetterReview = "letter_review.schema.json"
	WebSearch    = "web_search.schema.json"
	Registry     = "registry.schema.json"
	Blacklist    = "blacklist.schema.json"
	Snapshot     = "snapshot.schema.json"
)

// All lists every embedded schema
var All = []string{
	Evaluation, Coordination, Resolution, Refinement, Plan,
	LetterReview, WebSearch, Registry, Blacklist, Snapshot,
}

// Get returns the raw content of an embedded schema
func Get(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("unknown schema %s: %w", name, err)
	}
	return string(data), nil
}
