package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlan(t *testing.T) {
	p := NewPlan([]string{"suchen"}, []string{"FabLab Lübeck", " fablab lübeck ", "", "Repair Café"}, 0)
	assert.Equal(t, []string{"FabLab Lübeck", "Repair Café"}, p.Queries)
	assert.Equal(t, 1, p.TargetCount)
	assert.Equal(t, []string{"suchen"}, p.Steps)

	assert.Equal(t, 5, NewPlan(nil, nil, 5).TargetCount)
}

func TestSiteSnapshot_Text(t *testing.T) {
	var nilSnap *SiteSnapshot
	assert.Empty(t, nilSnap.Text())

	s := &SiteSnapshot{Title: "FabLab", Summary: "Offene Werkstatt", DetectedLocation: "lübeck", Highlights: []string{"3D-Druck"}}
	assert.Equal(t, "Title: FabLab\nSummary: Offene Werkstatt\nLocation: lübeck\n- 3D-Druck\n", s.Text())
}
