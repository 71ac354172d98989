// Package directory expands collection pages (lists of makerspaces, repair cafés, clubs)
// into individual organization entries.
package directory

import "fmt"

// ParseError represents a failure to fetch or parse a directory page
type ParseError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("directory error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("directory error for %s: %s", e.URL, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
