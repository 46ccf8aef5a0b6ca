package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWindowNotFound      = errors.New("provider window not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrWindowOverlap       = errors.New("window overlaps an existing provider window")
	ErrSlotTaken           = errors.New("slot already has an appointment")
)

// Repository contains all DB interactions needed by the API handlers.
type Repository interface {
	ListProviderWindows(ctx context.Context) ([]ProviderWindow, error)
	CreateProviderWindow(ctx context.Context, start, end time.Time) (*ProviderWindow, error)
	DeleteProviderWindow(ctx context.Context, id uuid.UUID) error

	ListAppointments(ctx context.Context) ([]Appointment, error)
	CreateAppointment(ctx context.Context, start, end time.Time) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// HasWindowCovering reports whether some provider window fully
	// contains [start, end).
	HasWindowCovering(ctx context.Context, start, end time.Time) (bool, error)
}
