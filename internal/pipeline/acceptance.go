package pipeline

import "github.com/jonathan/outreach-scout/internal/types"

// Acceptance tunables. The override floor is max(OverrideFloorMin, threshold*OverrideFactor).
const (
	OverrideFloorMin = 0.25
	OverrideFactor   = 0.85

	// DirectoryScore is the fixed evaluation given to collection pages
	DirectoryScore = 0.2
	// DirectoryMaxDepth bounds directory expansion recursion
	DirectoryMaxDepth = 2
	// FeedbackPoolSize is how many recent hints refinement sees
	FeedbackPoolSize = 10
)

// OverrideFloor is the minimum score at which an approving coordinator can overrule the evaluation
func OverrideFloor(threshold float64) float64 {
	return max(OverrideFloorMin, threshold*OverrideFactor)
}

// AcceptInput is everything the acceptance rule looks at
type AcceptInput struct {
	Evaluation   types.EvaluationResult
	Coordination *types.CoordinatorDecision // nil when no coordination ran
	Threshold    float64
	Directory    bool
	QuotaReached bool
}

// ShouldAccept applies the acceptance rule. A coordination decision, when present, must
// approve without blacklisting; it can also lift a candidate whose score clears the
// override floor.
func ShouldAccept(in AcceptInput) bool {
	if in.Directory || in.QuotaReached {
		return false
	}
	eval := in.Evaluation
	byEvaluation := eval.Accepted && eval.Score >= in.Threshold

	coord := in.Coordination
	if coord == nil {
		return byEvaluation
	}
	if !coord.Approved || coord.Blacklist {
		return false
	}
	override := eval.Score >= OverrideFloor(in.Threshold)
	return byEvaluation || override
}
