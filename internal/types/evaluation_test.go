package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluationResult_Clamp(t *testing.T) {
	e := EvaluationResult{Score: 1.4, OutreachPriority: -0.2}.Clamp()
	assert.Equal(t, 1.0, e.Score)
	assert.Equal(t, 0.0, e.OutreachPriority)

	e = EvaluationResult{Score: 0.62, OutreachPriority: 0.5}.Clamp()
	assert.Equal(t, 0.62, e.Score)
	assert.Equal(t, 0.5, e.OutreachPriority)
}
