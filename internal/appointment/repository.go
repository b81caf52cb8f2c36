package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/provider"
)

// Repository contains all storage interactions needed by the engine.
type Repository interface {
	// GetAppointmentByID returns ErrAppointmentNotFound when absent.
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// HasOverlap reports whether a booked appointment of the provider
	// intersects [start, end). excludeID, when set, is ignored.
	HasOverlap(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)

	// ScheduleForDay returns every appointment of the provider starting in
	// [dayStart, dayStart+24h), ordered by start.
	ScheduleForDay(ctx context.Context, providerID uuid.UUID, dayStart time.Time) ([]Appointment, error)

	// InsertAppointment persists a new appointment. A booked appointment
	// that would intersect another booked one is rejected with ErrOverlap.
	InsertAppointment(ctx context.Context, a *Appointment) error

	// UpdateAppointmentStatus moves id from one status to another. It returns
	// ErrAppointmentNotFound when no appointment with that id is in from.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}

// ProviderLookup resolves providers for the booking engine.
type ProviderLookup interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
}
