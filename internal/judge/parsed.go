// Package judge wraps the judgment service calls (evaluation, coordination, organization
// resolution, query refinement and planning) behind typed results.
package judge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/schemas"
)

// ErrNoJSON is returned when a response contains no JSON object
var ErrNoJSON = errors.New("response contains no JSON object")

// Parsed is either a decoded response or the malformed raw text.
// Callers must handle both arms through Get.
type Parsed[T any] struct {
	value T
	ok    bool
	raw   string
	err   error
}

// Ok wraps a decoded value
func Ok[T any](value T, raw string) Parsed[T] {
	return Parsed[T]{value: value, ok: true, raw: raw}
}

// Malformed wraps raw text that could not be decoded
func Malformed[T any](raw string, err error) Parsed[T] {
	return Parsed[T]{raw: raw, err: err}
}

// Get returns the decoded value and whether it exists
func (p Parsed[T]) Get() (T, bool) {
	return p.value, p.ok
}

// Raw returns the service text the result was built from
func (p Parsed[T]) Raw() string {
	return p.raw
}

// Err returns why the response was malformed, nil for decoded results
func (p Parsed[T]) Err() error {
	return p.err
}

// Parse extracts the JSON object from raw, validates it against the named embedded
// schema and decodes it into T
func Parse[T any](raw, schemaName string) Parsed[T] {
	obj := llm.ExtractJSONObject(raw)
	if obj == "" {
		return Malformed[T](raw, ErrNoJSON)
	}
	if err := schemas.Validate(schemaName, obj); err != nil {
		return Malformed[T](raw, err)
	}
	var value T
	if err := json.Unmarshal([]byte(obj), &value); err != nil {
		return Malformed[T](raw, fmt.Errorf("failed to decode response: %w", err))
	}
	return Ok(value, raw)
}
