package schedule

import "time"

// LeadTime is the minimum advance notice required for a client booking.
// This is a hard business rule, not a per-instance setting.
const LeadTime = 24 * time.Hour

// Rules decides whether a requested window may become an appointment.
type Rules struct {
	index *Index
}

func NewRules(index *Index) *Rules {
	return &Rules{index: index}
}

// CanBook reports booking eligibility. Providers define their own
// availability and are always eligible. Clients must book at least
// LeadTime in advance and only on slot starts the provider has declared.
func (r *Rules) CanBook(mode Mode, w TimeWindow, now time.Time) bool {
	if mode == ModeProvider {
		return true
	}
	if w.Start.Sub(now) < LeadTime {
		return false
	}
	return r.index.IsBookable(w.Start)
}
