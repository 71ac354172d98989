package filters

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// minLanguageConfidence is the confidence above which a foreign detection rejects
const minLanguageConfidence = 0.8

// detectable are the languages the gate can tell apart
var detectable = []lingua.Language{
	lingua.German, lingua.English, lingua.French, lingua.Dutch, lingua.Danish,
	lingua.Polish, lingua.Spanish, lingua.Italian, lingua.Swedish,
}

// LanguageGate rejects text that is confidently written in a language outside the allowed set.
// Short or ambiguous text always passes.
type LanguageGate struct {
	detector lingua.LanguageDetector
	allowed  map[string]bool
	minChars int
}

// NewLanguageGate builds a gate for the allowed lingua language names (e.g. "German")
func NewLanguageGate(allowed []string, minChars int) *LanguageGate {
	set := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		set[strings.ToLower(name)] = true
	}
	return &LanguageGate{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			WithMinimumRelativeDistance(0.1).
			Build(),
		allowed:  set,
		minChars: minChars,
	}
}

// Allow reports whether text passes, and the detected language name when it does not
func (g *LanguageGate) Allow(text string) (bool, string) {
	if g == nil || len(g.allowed) == 0 {
		return true, ""
	}
	text = strings.TrimSpace(text)
	if len([]rune(text)) < g.minChars {
		return true, ""
	}

	lang, ok := g.detector.DetectLanguageOf(text)
	if !ok {
		return true, ""
	}
	name := lang.String()
	if g.allowed[strings.ToLower(name)] {
		return true, ""
	}
	if g.detector.ComputeLanguageConfidence(text, lang) < minLanguageConfidence {
		return true, ""
	}
	return false, name
}
