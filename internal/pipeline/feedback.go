package pipeline

import (
	"slices"
	"strings"
)

// FeedbackPool keeps the most recent refinement hints, oldest first
type FeedbackPool struct {
	size  int
	items []string
}

// NewFeedbackPool creates a pool holding at most size hints
func NewFeedbackPool(size int) *FeedbackPool {
	if size <= 0 {
		size = FeedbackPoolSize
	}
	return &FeedbackPool{size: size}
}

// Add records hints. A repeated hint moves to the newest position.
func (p *FeedbackPool) Add(hints ...string) {
	for _, h := range hints {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if i := slices.Index(p.items, h); i >= 0 {
			p.items = slices.Delete(p.items, i, i+1)
		}
		p.items = append(p.items, h)
		if len(p.items) > p.size {
			p.items = p.items[len(p.items)-p.size:]
		}
	}
}

// Items returns a copy of the pool
func (p *FeedbackPool) Items() []string {
	return slices.Clone(p.items)
}

// Len returns the number of hints held
func (p *FeedbackPool) Len() int {
	return len(p.items)
}
