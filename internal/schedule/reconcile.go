package schedule

// Reconciler merges server-confirmed events with the pending holds into
// the single list the calendar displays. The output depends only on the
// three inputs; when none of them changed since the last call the cached
// result is returned and downstream recomputation is skipped.
type Reconciler struct {
	index *Index

	seen          bool
	lastMode      Mode
	lastConfirmed []Event
	lastPending   []Hold
	lastOut       []Event
}

func NewReconciler(index *Index) *Reconciler {
	return &Reconciler{index: index}
}

// Reconcile returns the display list for the mode. Provider mode shows
// only durable schedule entries and rebuilds the availability index from
// them. Client mode appends the pending holds, each marked as an
// unconfirmed event.
func (r *Reconciler) Reconcile(mode Mode, confirmed []Event, pending []Hold) []Event {
	if r.seen && mode == r.lastMode && eventsEqual(confirmed, r.lastConfirmed) && holdsEqual(pending, r.lastPending) {
		return r.lastOut
	}

	out := make([]Event, 0, len(confirmed)+len(pending))
	out = append(out, confirmed...)

	if mode == ModeProvider {
		windows := make([]TimeWindow, 0, len(confirmed))
		for _, ev := range confirmed {
			windows = append(windows, TimeWindow{Start: ev.Start, End: ev.End})
		}
		r.index.Rebuild(windows)
	} else {
		for _, h := range pending {
			out = append(out, Event{
				ID:        h.ID,
				Start:     h.Window.Start,
				End:       h.Window.End,
				Title:     PendingTitle,
				Color:     PendingColor,
				Confirmed: false,
			})
		}
	}

	r.seen = true
	r.lastMode = mode
	r.lastConfirmed = append([]Event(nil), confirmed...)
	r.lastPending = append([]Hold(nil), pending...)
	r.lastOut = out

	return out
}

// Structural equality, not reference equality: a refetch that returns the
// same payload must not trigger a recompute.

func eventsEqual(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			!a[i].Start.Equal(b[i].Start) ||
			!a[i].End.Equal(b[i].End) ||
			a[i].Title != b[i].Title ||
			a[i].Color != b[i].Color ||
			a[i].Confirmed != b[i].Confirmed {
			return false
		}
	}
	return true
}

func holdsEqual(a, b []Hold) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			!a[i].Window.Start.Equal(b[i].Window.Start) ||
			!a[i].Window.End.Equal(b[i].Window.End) ||
			!a[i].ExpiresAt.Equal(b[i].ExpiresAt) {
			return false
		}
	}
	return true
}
