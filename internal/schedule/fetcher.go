package schedule

import (
	"context"
	"time"
)

// RemoteWindow is a durable window or appointment as the scheduling
// service returns it.
type RemoteWindow struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Fetcher is the session's view of the scheduling service. Every call may
// fail with a transport error; the session treats failures as recoverable
// and leaves local state intact.
type Fetcher interface {
	FetchProviderSchedule(ctx context.Context) ([]RemoteWindow, error)
	FetchAppointments(ctx context.Context) ([]RemoteWindow, error)
	CreateProviderWindow(ctx context.Context, w TimeWindow) error
	CreateAppointment(ctx context.Context, w TimeWindow) error
	DeleteProviderWindow(ctx context.Context, id string) error
	DeleteAppointment(ctx context.Context, id string) error
}
