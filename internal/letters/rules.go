// Package letters drafts, checks, stores and dispatches invitation letters for accepted candidates.
package letters

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule names reported in violations
const (
	RuleEmpty       = "empty"
	RuleWordLimit   = "word_limit"
	RulePromissory  = "promissory_language"
	RulePlaceholder = "placeholder"
)

var (
	promissoryPattern  = regexp.MustCompile(`(?i)\b(promise|promised|guarantee|guaranteed|commit|committed|versprechen|garantieren|zusichern|verbindlich zusagen)\b`)
	placeholderPattern = regexp.MustCompile(`\[[^\]\n]{1,40}\]`)
)

// Violation is a failed local content rule
type Violation struct {
	Rule    string
	Message string
}

func (v Violation) String() string {
	return v.Message
}

// CountWords counts whitespace separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// FindPromissory returns the promissory phrases found in text, in order
func FindPromissory(text string) []string {
	return promissoryPattern.FindAllString(text, -1)
}

// Check applies the local content rules to a draft
func Check(text string, maxWords int) []Violation {
	if strings.TrimSpace(text) == "" {
		return []Violation{{Rule: RuleEmpty, Message: "Das Schreiben ist leer."}}
	}

	var violations []Violation
	if n := CountWords(text); maxWords > 0 && n > maxWords {
		violations = append(violations, Violation{
			Rule:    RuleWordLimit,
			Message: fmt.Sprintf("Das Schreiben hat %d Wörter, erlaubt sind höchstens %d.", n, maxWords),
		})
	}
	if found := FindPromissory(text); len(found) > 0 {
		violations = append(violations, Violation{
			Rule:    RulePromissory,
			Message: fmt.Sprintf("Keine Zusagen oder Versprechen verwenden (gefunden: %s).", strings.Join(found, ", ")),
		})
	}
	// markdown links are not placeholders
	if ph := placeholderPattern.FindAllStringIndex(text, -1); len(ph) > 0 {
		var names []string
		for _, loc := range ph {
			if loc[1] < len(text) && text[loc[1]] == '(' {
				continue
			}
			names = append(names, text[loc[0]:loc[1]])
		}
		if len(names) > 0 {
			violations = append(violations, Violation{
				Rule:    RulePlaceholder,
				Message: fmt.Sprintf("Platzhalter ersetzen: %s.", strings.Join(names, ", ")),
			})
		}
	}
	return violations
}
