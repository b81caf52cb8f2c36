package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
//
//	booked → cancelled
//
// cancelled is terminal.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusBooked:    {StatusCancelled},
	StatusCancelled: {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment occupies the half-open interval [StartUTC, EndUTC) of its
// provider's time while booked.
type Appointment struct {
	ID           uuid.UUID
	ProviderID   uuid.UUID
	CustomerName string
	StartUTC     time.Time
	EndUTC       time.Time
	Status       Status
	CreatedAt    time.Time
}

// Overlaps reports whether [a.StartUTC, a.EndUTC) intersects [start, end).
// Touching endpoints do not overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartUTC.Before(end) && start.Before(a.EndUTC)
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// StartOfDayUTC returns midnight UTC of the calendar day t falls on in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
