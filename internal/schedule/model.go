package schedule

import (
	"time"
)

// Mode selects which role the session is operating as. It controls
// which data source feeds the display list and which booking rules apply.
type Mode string

const (
	ModeProvider Mode = "provider"
	ModeClient   Mode = "client"
)

// View mirrors the calendar granularity the UI is currently showing.
// Slot selection is only actionable in week and day views.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// TimeWindow is a provider availability block or a booked appointment span.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Validate checks the Start < End invariant.
func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Event is a single entry on the displayed calendar. Durable events carry
// server-issued ids and Confirmed=true; pending holds are overlaid as
// events with locally generated ids and Confirmed=false.
type Event struct {
	ID        string
	Start     time.Time
	End       time.Time
	Title     string
	Color     string
	Confirmed bool
}

// Hold is an unconfirmed client-side reservation of a window. It lives in
// the ledger until it is confirmed, cancelled, or its deadline passes.
type Hold struct {
	ID        string
	Window    TimeWindow
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Pending-hold presentation, matching what the calendar renders for an
// unconfirmed appointment.
const (
	PendingTitle = "Temp appointment"
	PendingColor = "mediumaquamarine"
)
