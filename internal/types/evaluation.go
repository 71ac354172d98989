//nolint:revive // types is a standard Go package name pattern
package types

// EvaluationResult is the judgment of a candidate's fit.
// Accepted does not imply Score >= threshold; callers re-check the threshold.
type EvaluationResult struct {
	Score            float64 `json:"score"`
	Accepted         bool    `json:"accepted"`
	Reason           string  `json:"reason"`
	SearchAdjustment string  `json:"search_adjustment,omitempty"`
	Category         string  `json:"category,omitempty"`
	RegionHint       string  `json:"region_hint,omitempty"`
	Nonprofit        bool    `json:"nonprofit,omitempty"`
	MakerFocus       bool    `json:"maker_focus,omitempty"`
	OutreachPriority float64 `json:"outreach_priority,omitempty"`
}

// Clamp forces Score and OutreachPriority into [0,1]
func (e EvaluationResult) Clamp() EvaluationResult {
	e.Score = clamp01(e.Score)
	e.OutreachPriority = clamp01(e.OutreachPriority)
	return e
}

// CoordinatorDecision is the second-opinion override or veto on an evaluation
type CoordinatorDecision struct {
	Approved        bool     `json:"approved"`
	Reason          string   `json:"reason"`
	Dialogue        []string `json:"dialogue,omitempty"`
	KeywordHints    []string `json:"keyword_hints,omitempty"`
	Blacklist       bool     `json:"blacklist"`
	BlacklistReason string   `json:"blacklist_reason,omitempty"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
