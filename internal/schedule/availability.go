package schedule

import (
	"sync"
	"time"
)

// SlotStep is the quantization granularity for bookable slot-start points.
// It must match the calendar's slot step exactly or slots will silently
// mismatch.
const SlotStep = 15 * time.Minute

// Index is a membership set of bookable slot-start points derived from the
// provider's availability windows. It is rebuilt wholesale on every
// schedule change; the point set is replaced atomically so a reader never
// observes a half-built index.
type Index struct {
	mu     sync.RWMutex
	points map[int64]struct{}
}

func NewIndex() *Index {
	return &Index{points: make(map[int64]struct{})}
}

// Rebuild replaces the whole point set from the given windows. Each window
// is expanded into SlotStep increments over [Start, End).
func (ix *Index) Rebuild(windows []TimeWindow) {
	points := make(map[int64]struct{})
	for _, w := range windows {
		for t := w.Start; t.Before(w.End); t = t.Add(SlotStep) {
			points[t.Unix()] = struct{}{}
		}
	}

	ix.mu.Lock()
	ix.points = points
	ix.mu.Unlock()
}

// IsBookable reports whether the exact point was emitted by the most
// recent Rebuild. There is no partial-window logic.
func (ix *Index) IsBookable(point time.Time) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	_, ok := ix.points[point.Unix()]
	return ok
}

// Size returns the number of bookable points in the current index.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.points)
}
