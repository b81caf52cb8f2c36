package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository. InsertAppointment applies
// the same exclusion rule as the appointments_no_overlap constraint, under
// the repository mutex.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]Appointment
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{appointments: make(map[uuid.UUID]Appointment)}
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) HasOverlap(_ context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overlapLocked(providerID, start, end, excludeID), nil
}

func (r *MemoryRepository) overlapLocked(providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	for _, a := range r.appointments {
		if a.ProviderID != providerID || a.Status != StatusBooked {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) ScheduleForDay(_ context.Context, providerID uuid.UUID, dayStart time.Time) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dayEnd := dayStart.Add(24 * time.Hour)
	result := []Appointment{}
	for _, a := range r.appointments {
		if a.ProviderID != providerID {
			continue
		}
		if a.StartUTC.Before(dayStart) || !a.StartUTC.Before(dayEnd) {
			continue
		}
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartUTC.Equal(result[j].StartUTC) {
			return result[i].StartUTC.Before(result[j].StartUTC)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (r *MemoryRepository) InsertAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.Status == StatusBooked && r.overlapLocked(a.ProviderID, a.StartUTC, a.EndUTC, nil) {
		return ErrOverlap
	}
	r.appointments[a.ID] = *a
	return nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded event log.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EventLog, len(r.events))
	copy(out, r.events)
	return out
}
