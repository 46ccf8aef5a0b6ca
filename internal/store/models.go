package store

import (
	"time"

	"github.com/google/uuid"
)

// ProviderWindow is a durable block of provider availability.
type ProviderWindow struct {
	ID        uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// Appointment is a durable client booking.
type Appointment struct {
	ID        uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}
